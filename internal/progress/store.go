package progress

import (
	"context"
	"time"
)

type Store interface {
	// CompleteLesson inserts a record unless one exists, then returns the surviving record.
	CompleteLesson(ctx context.Context, id, userID, lessonID string, at time.Time) (LessonProgress, error)
	UncompleteLesson(ctx context.Context, userID, lessonID string) error
	AppendSubmission(ctx context.Context, s QuizSubmission) error
	CourseProgress(ctx context.Context, userID, courseID string) (CourseProgress, error)
	ListSubmissions(ctx context.Context, userID, quizID string) ([]QuizSubmission, error)
}
