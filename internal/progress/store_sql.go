package progress

import (
	"context"
	"database/sql"
	"encoding/json"
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

func exists(ctx context.Context, q db.Querier, query, id, what string) error {
	var one int
	err := q.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s not found", what)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", what, err)
	}
	return nil
}

func (s *SQLStore) CompleteLesson(ctx context.Context, id, userID, lessonID string, at time.Time) (LessonProgress, error) {
	if err := exists(ctx, s.db, `SELECT 1 FROM lessons WHERE id=$1`, lessonID, "lesson"); err != nil {
		return LessonProgress{}, err
	}
	// the unique (user_id, lesson_id) index settles concurrent callers
	_, err := s.db.ExecContext(ctx, `INSERT INTO lesson_progress (id,user_id,lesson_id,completed_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`, id, userID, lessonID, db.Millis(at))
	if err != nil {
		return LessonProgress{}, fmt.Errorf("insert lesson progress: %w", err)
	}
	var (
		p  LessonProgress
		ms int64
	)
	err = s.db.QueryRowContext(ctx, `SELECT id,user_id,lesson_id,completed_at FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`,
		userID, lessonID).Scan(&p.ID, &p.UserID, &p.LessonID, &ms)
	if err != nil {
		return LessonProgress{}, fmt.Errorf("read lesson progress: %w", err)
	}
	p.CompletedAt = db.FromMillis(ms)
	return p, nil
}

func (s *SQLStore) UncompleteLesson(ctx context.Context, userID, lessonID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lesson_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID)
	if err != nil {
		return fmt.Errorf("delete lesson progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("progress record not found")
	}
	return nil
}

func (s *SQLStore) AppendSubmission(ctx context.Context, sub QuizSubmission) error {
	if err := exists(ctx, s.db, `SELECT 1 FROM quizzes WHERE id=$1`, sub.QuizID, "quiz"); err != nil {
		return err
	}
	answers := sub.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_submissions
		(id,user_id,quiz_id,scored_points,total_points,percent,answers_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sub.ID, sub.UserID, sub.QuizID, sub.ScoredPoints, sub.TotalPoints, sub.Percent, string(aj), db.Millis(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *SQLStore) CourseProgress(ctx context.Context, userID, courseID string) (CourseProgress, error) {
	if err := exists(ctx, s.db, `SELECT 1 FROM courses WHERE id=$1`, courseID, "course"); err != nil {
		return CourseProgress{}, err
	}
	out := CourseProgress{CourseID: courseID, UserID: userID, LessonsCompleted: []LessonProgress{}}

	rows, err := s.db.QueryContext(ctx, `SELECT lp.id, lp.user_id, lp.lesson_id, lp.completed_at
		FROM lesson_progress lp JOIN lessons l ON l.id = lp.lesson_id
		WHERE lp.user_id=$1 AND l.course_id=$2
		ORDER BY lp.completed_at, lp.id`, userID, courseID)
	if err != nil {
		return CourseProgress{}, fmt.Errorf("course lesson progress: %w", err)
	}
	for rows.Next() {
		var (
			p  LessonProgress
			ms int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &ms); err != nil {
			rows.Close()
			return CourseProgress{}, err
		}
		p.CompletedAt = db.FromMillis(ms)
		out.LessonsCompleted = append(out.LessonsCompleted, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return CourseProgress{}, err
	}
	rows.Close()

	out.QuizSubmissions, err = s.querySubmissions(ctx, `SELECT `+submissionColumns("s")+`
		FROM quiz_submissions s JOIN quizzes q ON q.id = s.quiz_id
		WHERE s.user_id=$1 AND q.course_id=$2
		ORDER BY s.created_at, s.id`, userID, courseID)
	if err != nil {
		return CourseProgress{}, err
	}
	return out, nil
}

func (s *SQLStore) ListSubmissions(ctx context.Context, userID, quizID string) ([]QuizSubmission, error) {
	if err := exists(ctx, s.db, `SELECT 1 FROM quizzes WHERE id=$1`, quizID, "quiz"); err != nil {
		return nil, err
	}
	return s.querySubmissions(ctx, `SELECT `+submissionColumns("s")+`
		FROM quiz_submissions s WHERE s.user_id=$1 AND s.quiz_id=$2
		ORDER BY s.created_at DESC, s.id DESC`, userID, quizID)
}

func submissionColumns(alias string) string {
	a := alias + "."
	return a + "id," + a + "user_id," + a + "quiz_id," + a + "scored_points," + a + "total_points," +
		a + "percent," + a + "answers_json," + a + "created_at"
}

func (s *SQLStore) querySubmissions(ctx context.Context, query string, args ...any) ([]QuizSubmission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()
	out := []QuizSubmission{}
	for rows.Next() {
		var (
			sub QuizSubmission
			aj  string
			ms  int64
		)
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.QuizID, &sub.ScoredPoints, &sub.TotalPoints, &sub.Percent, &aj, &ms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &sub.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", sub.ID, err)
		}
		sub.CreatedAt = db.FromMillis(ms)
		out = append(out, sub)
	}
	return out, rows.Err()
}
