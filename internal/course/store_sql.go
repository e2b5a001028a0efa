package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore {
	return &SQLStore{db: h}
}

func (s *SQLStore) CreateCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,description,price,published,teacher_id,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.Title, c.Description, c.Price, c.Published, db.NullString(c.TeacherID),
		db.Millis(c.CreatedAt), db.Millis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

const courseColumns = `id,title,description,price,published,teacher_id,created_at,updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (Course, error) {
	var (
		c                  Course
		teacher            sql.NullString
		created, updatedMs int64
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Published, &teacher, &created, &updatedMs); err != nil {
		return Course{}, err
	}
	c.TeacherID = db.StringPtr(teacher)
	c.CreatedAt = db.FromMillis(created)
	c.UpdatedAt = db.FromMillis(updatedMs)
	return c, nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id string, load Load) (Course, error) {
	c, err := scanCourse(s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, apperr.NotFound("course not found")
		}
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	if load.Students {
		if c.Students, err = s.listStudents(ctx, id); err != nil {
			return Course{}, err
		}
	}
	if load.Lessons {
		if c.Lessons, err = s.ListLessons(ctx, id); err != nil {
			return Course{}, err
		}
	}
	return c, nil
}

func (s *SQLStore) listStudents(ctx context.Context, courseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id FROM course_enrollments WHERE course_id=$1 ORDER BY enrolled_at, student_id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListCourses(ctx context.Context, opts ListOpts) ([]Course, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()
	out := make([]Course, 0, opts.Limit)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) UpdateCourse(ctx context.Context, c Course) error {
	res, err := s.db.ExecContext(ctx, `UPDATE courses
		SET title=$1, description=$2, price=$3, published=$4, teacher_id=$5, updated_at=$6
		WHERE id=$7`,
		c.Title, c.Description, c.Price, c.Published, db.NullString(c.TeacherID), db.Millis(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireRow(res, "course not found")
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("course not found")
			}
			return err
		}
		// children first, parents last
		steps := []string{
			`DELETE FROM lesson_progress WHERE lesson_id IN (SELECT id FROM lessons WHERE course_id=$1)`,
			`DELETE FROM quiz_submissions WHERE quiz_id IN (SELECT id FROM quizzes WHERE course_id=$1)`,
			`DELETE FROM quiz_options WHERE question_id IN (
				SELECT qq.id FROM quiz_questions qq JOIN quizzes q ON q.id = qq.quiz_id WHERE q.course_id=$1)`,
			`DELETE FROM quiz_questions WHERE quiz_id IN (SELECT id FROM quizzes WHERE course_id=$1)`,
			`DELETE FROM quizzes WHERE course_id=$1`,
			`DELETE FROM lessons WHERE course_id=$1`,
			`DELETE FROM course_enrollments WHERE course_id=$1`,
			`DELETE FROM courses WHERE id=$1`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete course: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Enroll(ctx context.Context, courseID, studentID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO course_enrollments (course_id, student_id, enrolled_at)
		VALUES ($1,$2,$3) ON CONFLICT (course_id, student_id) DO NOTHING`,
		courseID, studentID, db.Millis(at))
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Conflict("user already enrolled")
	}
	return nil
}

func (s *SQLStore) Unenroll(ctx context.Context, courseID, studentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM course_enrollments WHERE course_id=$1 AND student_id=$2`, courseID, studentID)
	if err != nil {
		return fmt.Errorf("unenroll: %w", err)
	}
	return nil
}

// ---- lessons ----

const lessonColumns = `id,course_id,title,content,ordering,duration_minutes,created_at,updated_at`

func scanLesson(row rowScanner) (Lesson, error) {
	var (
		l                  Lesson
		content            sql.NullString
		duration           sql.NullFloat64
		created, updatedMs int64
	)
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &content, &l.Ordering, &duration, &created, &updatedMs); err != nil {
		return Lesson{}, err
	}
	l.Content = db.StringPtr(content)
	l.DurationMinutes = db.FloatPtr(duration)
	l.CreatedAt = db.FromMillis(created)
	l.UpdatedAt = db.FromMillis(updatedMs)
	return l, nil
}

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO lessons (`+lessonColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		l.ID, l.CourseID, l.Title, db.NullString(l.Content), l.Ordering, db.NullFloat(l.DurationMinutes),
		db.Millis(l.CreatedAt), db.Millis(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (s *SQLStore) GetLesson(ctx context.Context, courseID, lessonID string) (Lesson, error) {
	l, err := scanLesson(s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id=$1 AND course_id=$2`, lessonID, courseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, apperr.NotFound("lesson not found in course")
		}
		return Lesson{}, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

func (s *SQLStore) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id=$1 ORDER BY ordering, created_at, id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateLesson(ctx context.Context, l Lesson) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lessons
		SET title=$1, content=$2, ordering=$3, duration_minutes=$4, updated_at=$5
		WHERE id=$6 AND course_id=$7`,
		l.Title, db.NullString(l.Content), l.Ordering, db.NullFloat(l.DurationMinutes), db.Millis(l.UpdatedAt),
		l.ID, l.CourseID)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return requireRow(res, "lesson not found in course")
}

func (s *SQLStore) DeleteLesson(ctx context.Context, courseID, lessonID string) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM lessons WHERE id=$1 AND course_id=$2`, lessonID, courseID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("lesson not found in course")
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lesson_progress WHERE lesson_id=$1`, lessonID); err != nil {
			return fmt.Errorf("delete lesson progress: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, lessonID); err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}
		return nil
	})
}

func requireRow(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return nil
}
