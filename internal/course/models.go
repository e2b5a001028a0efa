package course

import "time"

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Published   bool      `json:"published"`
	TeacherID   *string   `json:"teacher_id,omitempty"` // nil: no owner assigned
	Students    []string  `json:"students,omitempty"`
	Lessons     []Lesson  `json:"lessons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Lesson struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	Title           string    `json:"title"`
	Content         *string   `json:"content,omitempty"`
	Ordering        int       `json:"ordering"`
	DurationMinutes *float64  `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Load selects which associations GetCourse fetches.
type Load struct {
	Students bool
	Lessons  bool
}

type ListOpts struct {
	Limit  int
	Offset int
}

type Page struct {
	Items      []Course `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

type CreateCourseInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Published   *bool    `json:"published,omitempty"`
	TeacherID   *string  `json:"teacher_id,omitempty" validate:"omitempty,min=1"` // honoured for admins only
}

type UpdateCourseInput struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Published   *bool    `json:"published,omitempty"`
}

type CreateLessonInput struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Content         *string  `json:"content,omitempty"`
	Ordering        *int     `json:"ordering,omitempty" validate:"omitempty,gte=0"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
}

type UpdateLessonInput struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content         *string  `json:"content,omitempty"`
	Ordering        *int     `json:"ordering,omitempty" validate:"omitempty,gte=0"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
}
