package quiz

import "time"

// Quiz is the authoring model. Correctness lives on each Option.
type Quiz struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"course_id"`
	Title     string     `json:"title"`
	OwnerID   *string    `json:"-"` // teacher of the owning course
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Points  int      `json:"points"`
	Options []Option `json:"options"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Load selects what GetQuiz fetches besides the quiz row.
type Load struct {
	Questions bool
}

// QuestionInput accepts either per-option is_correct flags or a
// correct_index into Options. Both may be given if they agree.
type QuestionInput struct {
	Text         string        `json:"text" validate:"required"`
	Points       *int          `json:"points,omitempty" validate:"omitempty,gte=0,max=1000000"`
	CorrectIndex *int          `json:"correct_index,omitempty" validate:"omitempty,gte=0"`
	Options      []OptionInput `json:"options" validate:"required,min=1,dive"`
}

type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type CreateQuizInput struct {
	Title     string          `json:"title" validate:"required,max=200"`
	Questions []QuestionInput `json:"questions" validate:"dive"`
}

// UpdateQuizInput: a non-nil Questions replaces every existing question.
type UpdateQuizInput struct {
	Title     *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Questions *[]QuestionInput `json:"questions,omitempty"`
}
