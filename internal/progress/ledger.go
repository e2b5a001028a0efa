package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/grading"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

// Ledger records lesson completions and quiz submissions for the acting user.
type Ledger struct {
	store  Store
	policy *rbac.Policy
	log    *zap.Logger
	now    func() time.Time
}

func NewLedger(store Store, policy *rbac.Policy, log *zap.Logger) *Ledger {
	if policy == nil {
		policy = rbac.NewPolicy(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{store: store, policy: policy, log: log, now: time.Now}
}

// MarkLessonComplete is idempotent: a second call returns the first record untouched.
func (l *Ledger) MarkLessonComplete(ctx context.Context, actor rbac.Actor, lessonID string) (LessonProgress, error) {
	if err := l.policy.Authorize(actor, nil, rbac.ActionProgressWrite); err != nil {
		return LessonProgress{}, err
	}
	return l.store.CompleteLesson(ctx, uuid.NewString(), actor.ID, lessonID, l.now().UTC())
}

// MarkLessonIncomplete fails with NotFound when there is nothing to remove.
func (l *Ledger) MarkLessonIncomplete(ctx context.Context, actor rbac.Actor, lessonID string) error {
	if err := l.policy.Authorize(actor, nil, rbac.ActionProgressWrite); err != nil {
		return err
	}
	return l.store.UncompleteLesson(ctx, actor.ID, lessonID)
}

// RecordQuizSubmission appends a new submission; earlier ones are never touched.
func (l *Ledger) RecordQuizSubmission(ctx context.Context, userID, quizID string, res grading.Result, answers map[string]string) (QuizSubmission, error) {
	copied := make(map[string]string, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	sub := QuizSubmission{
		ID:           uuid.NewString(),
		UserID:       userID,
		QuizID:       quizID,
		ScoredPoints: res.ScoredPoints,
		TotalPoints:  res.TotalPoints,
		Percent:      res.Percent,
		Answers:      copied,
		CreatedAt:    l.now().UTC(),
	}
	if err := l.store.AppendSubmission(ctx, sub); err != nil {
		return QuizSubmission{}, err
	}
	l.log.Debug("submission recorded", zap.String("submission_id", sub.ID), zap.String("quiz_id", quizID), zap.String("user_id", userID))
	return sub, nil
}

func (l *Ledger) GetCourseProgress(ctx context.Context, actor rbac.Actor, courseID string) (CourseProgress, error) {
	if err := l.policy.Authorize(actor, nil, rbac.ActionProgressView); err != nil {
		return CourseProgress{}, err
	}
	return l.store.CourseProgress(ctx, actor.ID, courseID)
}

// ListSubmissions returns the actor's history for one quiz, newest first.
func (l *Ledger) ListSubmissions(ctx context.Context, actor rbac.Actor, quizID string) ([]QuizSubmission, error) {
	if err := l.policy.Authorize(actor, nil, rbac.ActionProgressView); err != nil {
		return nil, err
	}
	return l.store.ListSubmissions(ctx, actor.ID, quizID)
}
