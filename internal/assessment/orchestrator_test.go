package assessment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/grading"
	"github.com/mind-engage/mindengage-learn/internal/progress"
	"github.com/mind-engage/mindengage-learn/internal/quiz"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

type fakeQuizzes struct {
	byCourse map[string]quiz.Quiz
}

func (f fakeQuizzes) Get(_ context.Context, courseID, quizID string) (quiz.Quiz, error) {
	q, ok := f.byCourse[courseID]
	if !ok || q.ID != quizID {
		return quiz.Quiz{}, apperr.NotFound("quiz not found in course")
	}
	return q, nil
}

type fakeRecorder struct {
	err   error
	calls []progress.QuizSubmission
}

func (f *fakeRecorder) RecordQuizSubmission(_ context.Context, userID, quizID string, res grading.Result, answers map[string]string) (progress.QuizSubmission, error) {
	if f.err != nil {
		return progress.QuizSubmission{}, f.err
	}
	s := progress.QuizSubmission{UserID: userID, QuizID: quizID, ScoredPoints: res.ScoredPoints, TotalPoints: res.TotalPoints, Percent: res.Percent, Answers: answers}
	f.calls = append(f.calls, s)
	return s, nil
}

func scenarioQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID: "qz", CourseID: "c-1",
		Questions: []quiz.Question{
			{ID: "q1", Points: 1, Options: []quiz.Option{{ID: "A", IsCorrect: true}, {ID: "X"}}},
			{ID: "q2", Points: 2, Options: []quiz.Option{{ID: "X"}, {ID: "B", IsCorrect: true}}},
		},
	}
}

var student = rbac.Actor{ID: "s-1", Role: rbac.RoleStudent}

func TestSubmitQuiz_ScoresAndRecords(t *testing.T) {
	rec := &fakeRecorder{}
	o := New(fakeQuizzes{byCourse: map[string]quiz.Quiz{"c-1": scenarioQuiz()}}, rec, nil)

	cases := []struct {
		answers map[string]string
		want    grading.Result
	}{
		{map[string]string{"q1": "A", "q2": "X"}, grading.Result{ScoredPoints: 1, TotalPoints: 3, Percent: 33}},
		{map[string]string{}, grading.Result{ScoredPoints: 0, TotalPoints: 3, Percent: 0}},
		{map[string]string{"q1": "A", "q2": "B"}, grading.Result{ScoredPoints: 3, TotalPoints: 3, Percent: 100}},
	}
	for _, tc := range cases {
		got, err := o.SubmitQuiz(context.Background(), "c-1", "qz", student, tc.answers)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if got != tc.want {
			t.Fatalf("answers %v: got %+v want %+v", tc.answers, got, tc.want)
		}
	}
	if len(rec.calls) != len(cases) {
		t.Fatalf("recorded %d submissions, want %d", len(rec.calls), len(cases))
	}
	if rec.calls[0].UserID != "s-1" || rec.calls[0].QuizID != "qz" || rec.calls[0].Percent != 33 {
		t.Fatalf("unexpected record %+v", rec.calls[0])
	}
}

func TestSubmitQuiz_LedgerFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &fakeRecorder{err: errors.New("db down")}
	o := New(fakeQuizzes{byCourse: map[string]quiz.Quiz{"c-1": scenarioQuiz()}}, rec, zap.New(core))

	got, err := o.SubmitQuiz(context.Background(), "c-1", "qz", student, map[string]string{"q1": "A"})
	if err != nil {
		t.Fatalf("expected score despite ledger failure, got %v", err)
	}
	if got.ScoredPoints != 1 || got.TotalPoints != 3 {
		t.Fatalf("score = %+v", got)
	}
	entries := logs.FilterMessage("quiz submission not recorded").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["user_id"] != "s-1" {
		t.Fatalf("warning fields = %v", entries[0].ContextMap())
	}
}

func TestSubmitQuiz_RequiredPersistencePropagates(t *testing.T) {
	boom := errors.New("db down")
	o := New(fakeQuizzes{byCourse: map[string]quiz.Quiz{"c-1": scenarioQuiz()}}, &fakeRecorder{err: boom}, nil,
		WithPersistPolicy(Required))
	if _, err := o.SubmitQuiz(context.Background(), "c-1", "qz", student, nil); !errors.Is(err, boom) {
		t.Fatalf("expected ledger error, got %v", err)
	}
}

func TestSubmitQuiz_Rejections(t *testing.T) {
	rec := &fakeRecorder{}
	o := New(fakeQuizzes{byCourse: map[string]quiz.Quiz{"c-1": scenarioQuiz()}}, rec, nil)
	ctx := context.Background()

	if _, err := o.SubmitQuiz(ctx, "c-2", "qz", student, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("course mismatch: %v", err)
	}
	if _, err := o.SubmitQuiz(ctx, "c-1", "qz", rbac.Actor{}, nil); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("anonymous: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("rejected submissions were recorded: %d", len(rec.calls))
	}
}
