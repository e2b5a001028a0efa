package course_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/course"
	"github.com/mind-engage/mindengage-learn/internal/db/dbtest"
	"github.com/mind-engage/mindengage-learn/internal/rbac"
)

var (
	teacher = rbac.Actor{ID: "t-1", Role: rbac.RoleTeacher}
	other   = rbac.Actor{ID: "t-2", Role: rbac.RoleTeacher}
	student = rbac.Actor{ID: "s-1", Role: rbac.RoleStudent}
	admin   = rbac.Actor{ID: "a-1", Role: rbac.RoleAdmin}
)

func newService(t *testing.T) (*course.Service, *course.SQLStore, *sql.DB) {
	t.Helper()
	h := dbtest.Open(t)
	st := course.NewSQLStore(h)
	return course.NewService(st, nil, nil), st, h
}

func intp(n int) *int { return &n }

func TestCreateCourse_RolesAndOwner(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, student, course.CreateCourseInput{Title: "Go", Description: "d"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student create: expected forbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "  ", Description: "d"}); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("blank title: expected invalid, got %v", err)
	}

	c, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "Go", Description: "basics"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.TeacherID == nil || *c.TeacherID != teacher.ID {
		t.Fatalf("creator should own course, got %v", c.TeacherID)
	}

	assigned := "t-9"
	c2, err := svc.Create(ctx, admin, course.CreateCourseInput{Title: "Rust", Description: "d", TeacherID: &assigned})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if *c2.TeacherID != "t-9" {
		t.Fatalf("admin should assign teacher, got %s", *c2.TeacherID)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Go" || got.Description != "basics" {
		t.Fatalf("unexpected course %+v", got)
	}
}

func TestEnroll_RejectsDuplicate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "Go", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Enroll(ctx, student, c.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := svc.Enroll(ctx, student, c.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second enroll: expected conflict, got %v", err)
	}
	if err := svc.Enroll(ctx, student, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("enroll missing course: expected not found, got %v", err)
	}

	got, _ := svc.Get(ctx, c.ID)
	if len(got.Students) != 1 || got.Students[0] != student.ID {
		t.Fatalf("students = %v", got.Students)
	}

	if err := svc.Unenroll(ctx, student, c.ID); err != nil {
		t.Fatalf("unenroll: %v", err)
	}
	if err := svc.Unenroll(ctx, student, c.ID); err != nil {
		t.Fatalf("unenroll twice should be a no-op: %v", err)
	}
	if err := svc.Enroll(ctx, student, c.ID); err != nil {
		t.Fatalf("re-enroll after unenroll: %v", err)
	}
}

func TestLessons_OrderingAndOwnership(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "Go", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range []course.CreateLessonInput{
		{Title: "third", Ordering: intp(3)},
		{Title: "first", Ordering: intp(1)},
		{Title: "second", Ordering: intp(2)},
	} {
		if _, err := svc.CreateLesson(ctx, teacher, c.ID, in); err != nil {
			t.Fatalf("create lesson: %v", err)
		}
	}
	if _, err := svc.CreateLesson(ctx, other, c.ID, course.CreateLessonInput{Title: "x"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-owner: expected forbidden, got %v", err)
	}

	lessons, err := svc.ListLessons(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	if len(lessons) != len(want) {
		t.Fatalf("got %d lessons", len(lessons))
	}
	for i, l := range lessons {
		if l.Title != want[i] {
			t.Fatalf("lesson %d = %q, want %q", i, l.Title, want[i])
		}
	}

	title := "renamed"
	if _, err := svc.UpdateLesson(ctx, student, c.ID, lessons[0].ID, course.UpdateLessonInput{Title: &title}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student update: expected forbidden, got %v", err)
	}
	updated, err := svc.UpdateLesson(ctx, admin, c.ID, lessons[0].ID, course.UpdateLessonInput{Title: &title})
	if err != nil || updated.Title != "renamed" {
		t.Fatalf("admin update: %v %+v", err, updated)
	}

	c2, _ := svc.Create(ctx, other, course.CreateCourseInput{Title: "Other", Description: "d"})
	if _, err := svc.GetLesson(ctx, c2.ID, lessons[0].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-course lesson: expected not found, got %v", err)
	}
	if err := svc.DeleteLesson(ctx, other, c2.ID, lessons[0].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-course delete: expected not found, got %v", err)
	}
}

func TestOwnerlessCourse_DeniesTeachers(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	now := time.Now()
	if err := st.CreateCourse(ctx, course.Course{ID: "c-orphan", Title: "Orphan", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateLesson(ctx, teacher, "c-orphan", course.CreateLessonInput{Title: "x"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden on ownerless course, got %v", err)
	}
	if _, err := svc.CreateLesson(ctx, admin, "c-orphan", course.CreateLessonInput{Title: "x"}); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
}

func TestDeleteCourse_Cascades(t *testing.T) {
	svc, _, h := newService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "Go", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	l, err := svc.CreateLesson(ctx, teacher, c.ID, course.CreateLessonInput{Title: "l1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Enroll(ctx, student, c.ID); err != nil {
		t.Fatal(err)
	}
	seed := []string{
		`INSERT INTO lesson_progress (id,user_id,lesson_id,completed_at) VALUES ('lp-1','s-1','` + l.ID + `',0)`,
		`INSERT INTO quizzes (id,course_id,title,created_at,updated_at) VALUES ('qz-1','` + c.ID + `','quiz',0,0)`,
		`INSERT INTO quiz_questions (id,quiz_id,position,text,points) VALUES ('qq-1','qz-1',0,'q',1)`,
		`INSERT INTO quiz_options (id,question_id,position,text,is_correct) VALUES ('qo-1','qq-1',0,'o',1)`,
		`INSERT INTO quiz_submissions (id,user_id,quiz_id,scored_points,total_points,percent,answers_json,created_at) VALUES ('qs-1','s-1','qz-1',1,1,100,'{}',0)`,
	}
	for _, q := range seed {
		if _, err := h.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := svc.Delete(ctx, other, c.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-owner delete: expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, teacher, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, table := range []string{"courses", "lessons", "lesson_progress", "quizzes", "quiz_questions", "quiz_options", "quiz_submissions", "course_enrollments"} {
		var n int
		if err := h.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("%s: %d rows survived the cascade", table, n)
		}
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestList_Pages(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "c", Description: "d"}); err != nil {
			t.Fatal(err)
		}
	}
	page, err := svc.List(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	page, err = svc.List(ctx, 2, 500)
	if err != nil {
		t.Fatal(err)
	}
	if page.Limit != 100 || len(page.Items) != 0 {
		t.Fatalf("limit should cap at 100 and page 2 be empty, got %+v", page)
	}
}

func TestUpdate_BlankTitleRejected(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx, teacher, course.CreateCourseInput{Title: "Go", Description: "d"})
	if err != nil {
		t.Fatal(err)
	}
	l, err := svc.CreateLesson(ctx, teacher, c.ID, course.CreateLessonInput{Title: "intro"})
	if err != nil {
		t.Fatal(err)
	}

	blank := "   "
	if _, err := svc.Update(ctx, teacher, c.ID, course.UpdateCourseInput{Title: &blank}); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("course: expected invalid, got %v", err)
	}
	if _, err := svc.UpdateLesson(ctx, teacher, c.ID, l.ID, course.UpdateLessonInput{Title: &blank}); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("lesson: expected invalid, got %v", err)
	}

	gotC, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	gotL, err := svc.GetLesson(ctx, c.ID, l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotC.Title != "Go" || gotL.Title != "intro" {
		t.Fatalf("titles changed: %q %q", gotC.Title, gotL.Title)
	}

	padded := "  Go 2  "
	upd, err := svc.Update(ctx, teacher, c.ID, course.UpdateCourseInput{Title: &padded})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Title != "Go 2" {
		t.Fatalf("title not trimmed: %q", upd.Title)
	}
}
