package course

import (
	"context"
	"time"
)

type Store interface {
	CreateCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string, load Load) (Course, error)
	ListCourses(ctx context.Context, opts ListOpts) ([]Course, int, error)
	UpdateCourse(ctx context.Context, c Course) error
	// DeleteCourse removes the course and everything it owns in one transaction.
	DeleteCourse(ctx context.Context, id string) error

	// Enroll fails with apperr.ErrConflict when the student is already enrolled.
	Enroll(ctx context.Context, courseID, studentID string, at time.Time) error
	Unenroll(ctx context.Context, courseID, studentID string) error

	CreateLesson(ctx context.Context, l Lesson) error
	GetLesson(ctx context.Context, courseID, lessonID string) (Lesson, error)
	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	UpdateLesson(ctx context.Context, l Lesson) error
	DeleteLesson(ctx context.Context, courseID, lessonID string) error
}
