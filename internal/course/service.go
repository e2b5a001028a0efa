package course

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
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

func (s *Service) Create(ctx context.Context, actor rbac.Actor, in CreateCourseInput) (Course, error) {
	if err := s.policy.Authorize(actor, nil, rbac.ActionCourseCreate); err != nil {
		return Course{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return Course{}, apperr.Invalid("%s", err)
	}

	teacherID := actor.ID
	if actor.IsAdmin() && in.TeacherID != nil {
		teacherID = strings.TrimSpace(*in.TeacherID)
	}
	if teacherID == "" {
		return Course{}, apperr.Invalid("teacher_id must not be empty")
	}
	now := s.now().UTC()
	c := Course{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		TeacherID:   &teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Published != nil {
		c.Published = *in.Published
	}
	if err := s.store.CreateCourse(ctx, c); err != nil {
		return Course{}, err
	}
	s.log.Info("course created", zap.String("course_id", c.ID), zap.String("teacher_id", teacherID))
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Course, error) {
	return s.store.GetCourse(ctx, id, Load{Students: true, Lessons: true})
}

// List pages through courses newest first. page is 1-based; limit is capped.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	items, total, err := s.store.ListCourses(ctx, ListOpts{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return Page{}, err
	}
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	return Page{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}, nil
}

func (s *Service) Update(ctx context.Context, actor rbac.Actor, id string, in UpdateCourseInput) (Course, error) {
	c, err := s.store.GetCourse(ctx, id, Load{})
	if err != nil {
		return Course{}, err
	}
	if err := s.policy.Authorize(actor, c.TeacherID, rbac.ActionCourseUpdate); err != nil {
		return Course{}, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := s.validate.Struct(in); err != nil {
		return Course{}, apperr.Invalid("%s", err)
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Published != nil {
		c.Published = *in.Published
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateCourse(ctx, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Delete cascades to lessons, quizzes and every progress record under them.
func (s *Service) Delete(ctx context.Context, actor rbac.Actor, id string) error {
	c, err := s.store.GetCourse(ctx, id, Load{})
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, c.TeacherID, rbac.ActionCourseDelete); err != nil {
		return err
	}
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.log.Info("course deleted", zap.String("course_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// Enroll adds the actor to the course. Enrolling twice is a Conflict.
func (s *Service) Enroll(ctx context.Context, actor rbac.Actor, courseID string) error {
	if err := s.policy.Authorize(actor, nil, rbac.ActionCourseEnroll); err != nil {
		return err
	}
	if _, err := s.store.GetCourse(ctx, courseID, Load{}); err != nil {
		return err
	}
	return s.store.Enroll(ctx, courseID, actor.ID, s.now().UTC())
}

// Unenroll removes the actor from the course; absent membership is not an error.
func (s *Service) Unenroll(ctx context.Context, actor rbac.Actor, courseID string) error {
	if err := s.policy.Authorize(actor, nil, rbac.ActionCourseEnroll); err != nil {
		return err
	}
	if _, err := s.store.GetCourse(ctx, courseID, Load{}); err != nil {
		return err
	}
	return s.store.Unenroll(ctx, courseID, actor.ID)
}

// ---- lessons ----

func (s *Service) CreateLesson(ctx context.Context, actor rbac.Actor, courseID string, in CreateLessonInput) (Lesson, error) {
	c, err := s.store.GetCourse(ctx, courseID, Load{})
	if err != nil {
		return Lesson{}, err
	}
	if err := s.policy.Authorize(actor, c.TeacherID, rbac.ActionLessonCreate); err != nil {
		return Lesson{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return Lesson{}, apperr.Invalid("%s", err)
	}
	now := s.now().UTC()
	l := Lesson{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		Title:           in.Title,
		Content:         in.Content,
		DurationMinutes: in.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Ordering != nil {
		l.Ordering = *in.Ordering
	}
	if err := s.store.CreateLesson(ctx, l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *Service) GetLesson(ctx context.Context, courseID, lessonID string) (Lesson, error) {
	return s.store.GetLesson(ctx, courseID, lessonID)
}

func (s *Service) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	if _, err := s.store.GetCourse(ctx, courseID, Load{}); err != nil {
		return nil, err
	}
	return s.store.ListLessons(ctx, courseID)
}

func (s *Service) UpdateLesson(ctx context.Context, actor rbac.Actor, courseID, lessonID string, in UpdateLessonInput) (Lesson, error) {
	c, err := s.store.GetCourse(ctx, courseID, Load{})
	if err != nil {
		return Lesson{}, err
	}
	l, err := s.store.GetLesson(ctx, courseID, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if err := s.policy.Authorize(actor, c.TeacherID, rbac.ActionLessonUpdate); err != nil {
		return Lesson{}, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := s.validate.Struct(in); err != nil {
		return Lesson{}, apperr.Invalid("%s", err)
	}
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Content != nil {
		l.Content = in.Content
	}
	if in.Ordering != nil {
		l.Ordering = *in.Ordering
	}
	if in.DurationMinutes != nil {
		l.DurationMinutes = in.DurationMinutes
	}
	l.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateLesson(ctx, l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *Service) DeleteLesson(ctx context.Context, actor rbac.Actor, courseID, lessonID string) error {
	c, err := s.store.GetCourse(ctx, courseID, Load{})
	if err != nil {
		return err
	}
	if _, err := s.store.GetLesson(ctx, courseID, lessonID); err != nil {
		return err
	}
	if err := s.policy.Authorize(actor, c.TeacherID, rbac.ActionLessonDelete); err != nil {
		return err
	}
	return s.store.DeleteLesson(ctx, courseID, lessonID)
}
