package quiz

import "context"

type Store interface {
	// CourseOwner returns the teacher of the course, nil when unassigned.
	CourseOwner(ctx context.Context, courseID string) (*string, error)
	CreateQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, courseID, quizID string, load Load) (Quiz, error)
	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
	// UpdateQuiz writes the title; with replaceQuestions it also discards
	// every question and option and inserts q.Questions in one transaction.
	UpdateQuiz(ctx context.Context, q Quiz, replaceQuestions bool) error
	DeleteQuiz(ctx context.Context, courseID, quizID string) error
}
