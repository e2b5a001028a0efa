package quiz

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/grading"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

type Service struct {
	store    Store
	policy   *rbac.Policy
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Store, policy *rbac.Policy, log *zap.Logger) *Service {
	if policy == nil {
		policy = rbac.NewPolicy(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		policy:   policy,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// Create persists the quiz with all of its questions and options atomically.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, courseID string, in CreateQuizInput) (Quiz, error) {
	owner, err := s.store.CourseOwner(ctx, courseID)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.policy.Authorize(actor, owner, rbac.ActionQuizCreate); err != nil {
		return Quiz{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return Quiz{}, apperr.Invalid("%s", err)
	}
	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return Quiz{}, err
	}
	now := s.now().UTC()
	q := Quiz{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Title:     in.Title,
		OwnerID:   owner,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	s.log.Info("quiz created", zap.String("quiz_id", q.ID), zap.String("course_id", courseID), zap.Int("questions", len(questions)))
	return q, nil
}

// Get returns the full quiz, answer key included. Callers facing users go through GetView.
func (s *Service) Get(ctx context.Context, courseID, quizID string) (Quiz, error) {
	return s.store.GetQuiz(ctx, courseID, quizID, Load{Questions: true})
}

func (s *Service) GetView(ctx context.Context, courseID, quizID string, actor *rbac.Actor) (View, error) {
	q, err := s.Get(ctx, courseID, quizID)
	if err != nil {
		return nil, err
	}
	return Sanitize(q, actor), nil
}

func (s *Service) List(ctx context.Context, courseID string, actor *rbac.Actor) ([]View, error) {
	if _, err := s.store.CourseOwner(ctx, courseID); err != nil {
		return nil, err
	}
	qs, err := s.store.ListQuizzes(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(qs))
	for _, q := range qs {
		out = append(out, Sanitize(q, actor))
	}
	return out, nil
}

// Update changes the title and, when in.Questions is set, replaces the
// whole question set. Replacement is destructive: prior question and
// option ids are gone afterwards.
func (s *Service) Update(ctx context.Context, actor rbac.Actor, courseID, quizID string, in UpdateQuizInput) (Quiz, error) {
	q, err := s.store.GetQuiz(ctx, courseID, quizID, Load{})
	if err != nil {
		return Quiz{}, err
	}
	if err := s.policy.Authorize(actor, q.OwnerID, rbac.ActionQuizUpdate); err != nil {
		return Quiz{}, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := s.validate.Struct(in); err != nil {
		return Quiz{}, apperr.Invalid("%s", err)
	}
	if in.Title != nil {
		q.Title = *in.Title
	}
	replace := in.Questions != nil
	if replace {
		for _, qi := range *in.Questions {
			if err := s.validate.Struct(qi); err != nil {
				return Quiz{}, apperr.Invalid("%s", err)
			}
		}
		if q.Questions, err = buildQuestions(*in.Questions); err != nil {
			return Quiz{}, err
		}
	}
	q.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateQuiz(ctx, q, replace); err != nil {
		return Quiz{}, err
	}
	if replace {
		s.log.Info("quiz questions replaced", zap.String("quiz_id", q.ID), zap.Int("questions", len(q.Questions)))
	}
	return s.Get(ctx, courseID, quizID)
}

func (s *Service) Delete(ctx context.Context, actor rbac.Actor, courseID, quizID string) error {
	q, err := s.store.GetQuiz(ctx, courseID, quizID, Load{})
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, q.OwnerID, rbac.ActionQuizDelete); err != nil {
		return err
	}
	if err := s.store.DeleteQuiz(ctx, courseID, quizID); err != nil {
		return err
	}
	s.log.Info("quiz deleted", zap.String("quiz_id", quizID), zap.String("actor_id", actor.ID))
	return nil
}

// buildQuestions assigns ids and folds correct_index into the per-option flags.
func buildQuestions(in []QuestionInput) ([]Question, error) {
	out := make([]Question, 0, len(in))
	for i, qi := range in {
		correct := -1
		for j, o := range qi.Options {
			if !o.IsCorrect {
				continue
			}
			if correct >= 0 {
				return nil, apperr.Invalid("question %d: more than one correct option", i)
			}
			correct = j
		}
		if qi.CorrectIndex != nil {
			idx := *qi.CorrectIndex
			if idx < 0 || idx >= len(qi.Options) {
				return nil, apperr.Invalid("question %d: correct_index %d out of range", i, idx)
			}
			if correct >= 0 && correct != idx {
				return nil, apperr.Invalid("question %d: correct_index disagrees with is_correct", i)
			}
			correct = idx
		}

		points := grading.DefaultPoints
		if qi.Points != nil {
			points = *qi.Points
		}
		q := Question{
			ID:      uuid.NewString(),
			Text:    strings.TrimSpace(qi.Text),
			Points:  points,
			Options: make([]Option, 0, len(qi.Options)),
		}
		for j, o := range qi.Options {
			q.Options = append(q.Options, Option{
				ID:        uuid.NewString(),
				Text:      strings.TrimSpace(o.Text),
				IsCorrect: j == correct,
			})
		}
		out = append(out, q)
	}
	return out, nil
}

// Grading converts the authoring model into the scoring engine's input.
func (q Quiz) Grading() []grading.Q {
	out := make([]grading.Q, 0, len(q.Questions))
	for _, qq := range q.Questions {
		pts := qq.Points
		g := grading.Q{ID: qq.ID, Points: &pts, Choices: make([]grading.Choice, 0, len(qq.Options))}
		for _, o := range qq.Options {
			g.Choices = append(g.Choices, grading.Choice{ID: o.ID, Correct: o.IsCorrect})
		}
		out = append(out, g)
	}
	return out
}
