// Package assessment ties quiz loading, scoring and the progress ledger
// together for a single submission.
package assessment

import (
	"context"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/grading"
	"github.com/mind-engage/mindengage-learn/internal/progress"
	"github.com/mind-engage/mindengage-learn/internal/quiz"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

type QuizSource interface {
	Get(ctx context.Context, courseID, quizID string) (quiz.Quiz, error)
}

type Recorder interface {
	RecordQuizSubmission(ctx context.Context, userID, quizID string, res grading.Result, answers map[string]string) (progress.QuizSubmission, error)
}

// PersistPolicy decides what a failed ledger write does to a submission.
type PersistPolicy int

const (
	// BestEffort logs the failure and still returns the score.
	BestEffort PersistPolicy = iota
	// Required fails the submission when the ledger write fails.
	Required
)

type Orchestrator struct {
	quizzes  QuizSource
	recorder Recorder
	policy   *rbac.Policy
	persist  PersistPolicy
	log      *zap.Logger
}

type Option func(*Orchestrator)

func WithPersistPolicy(p PersistPolicy) Option {
	return func(o *Orchestrator) { o.persist = p }
}

func WithPolicy(p *rbac.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

func New(quizzes QuizSource, recorder Recorder, log *zap.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{quizzes: quizzes, recorder: recorder, persist: BestEffort, log: log}
	for _, opt := range opts {
		opt(o)
	}
	if o.policy == nil {
		o.policy = rbac.NewPolicy(nil)
	}
	return o
}

// SubmitQuiz scores answers against the quiz and records the attempt.
// Any authenticated actor may submit.
func (o *Orchestrator) SubmitQuiz(ctx context.Context, courseID, quizID string, actor rbac.Actor, answers map[string]string) (grading.Result, error) {
	q, err := o.quizzes.Get(ctx, courseID, quizID)
	if err != nil {
		return grading.Result{}, err
	}
	if err := o.policy.Authorize(actor, nil, rbac.ActionQuizSubmit); err != nil {
		return grading.Result{}, err
	}

	res := grading.Score(q.Grading(), answers)

	if _, err := o.recorder.RecordQuizSubmission(ctx, actor.ID, q.ID, res, answers); err != nil {
		if o.persist == Required {
			return grading.Result{}, err
		}
		o.log.Warn("quiz submission not recorded",
			zap.String("quiz_id", q.ID),
			zap.String("user_id", actor.ID),
			zap.Error(err))
	}
	return res, nil
}
