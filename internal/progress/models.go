package progress

import "time"

// LessonProgress marks a lesson as completed by a user. At most one per (user, lesson).
type LessonProgress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// QuizSubmission is one scored attempt. Submissions are only ever appended.
type QuizSubmission struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	QuizID       string            `json:"quiz_id"`
	ScoredPoints int               `json:"scored_points"`
	TotalPoints  int               `json:"total_points"`
	Percent      int               `json:"percent"`
	Answers      map[string]string `json:"answers"` // question id -> option id
	CreatedAt    time.Time         `json:"created_at"`
}

type CourseProgress struct {
	CourseID         string           `json:"course_id"`
	UserID           string           `json:"user_id"`
	LessonsCompleted []LessonProgress `json:"lessons_completed"`
	QuizSubmissions  []QuizSubmission `json:"quiz_submissions"`
}
