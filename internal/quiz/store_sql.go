package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-learn/internal/apperr"
	"github.com/mind-engage/mindengage-learn/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore {
	return &SQLStore{db: h}
}

func (s *SQLStore) CourseOwner(ctx context.Context, courseID string) (*string, error) {
	var teacher sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT teacher_id FROM courses WHERE id=$1`, courseID).Scan(&teacher)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("course owner: %w", err)
	}
	return db.StringPtr(teacher), nil
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO quizzes (id,course_id,title,created_at,updated_at) VALUES ($1,$2,$3,$4,$5)`,
			q.ID, q.CourseID, q.Title, db.Millis(q.CreatedAt), db.Millis(q.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		return insertQuestions(ctx, tx, q.ID, q.Questions)
	})
}

func insertQuestions(ctx context.Context, tx *sql.Tx, quizID string, qs []Question) error {
	for i, qq := range qs {
		_, err := tx.ExecContext(ctx, `INSERT INTO quiz_questions (id,quiz_id,position,text,points) VALUES ($1,$2,$3,$4,$5)`,
			qq.ID, quizID, i, qq.Text, qq.Points)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		for j, o := range qq.Options {
			_, err := tx.ExecContext(ctx, `INSERT INTO quiz_options (id,question_id,position,text,is_correct) VALUES ($1,$2,$3,$4,$5)`,
				o.ID, qq.ID, j, o.Text, o.IsCorrect)
			if err != nil {
				return fmt.Errorf("insert option: %w", err)
			}
		}
	}
	return nil
}

const quizSelect = `SELECT q.id, q.course_id, q.title, c.teacher_id, q.created_at, q.updated_at
	FROM quizzes q JOIN courses c ON c.id = q.course_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var (
		q                Quiz
		owner            sql.NullString
		created, updated int64
	)
	if err := row.Scan(&q.ID, &q.CourseID, &q.Title, &owner, &created, &updated); err != nil {
		return Quiz{}, err
	}
	q.OwnerID = db.StringPtr(owner)
	q.CreatedAt = db.FromMillis(created)
	q.UpdatedAt = db.FromMillis(updated)
	return q, nil
}

// GetQuiz reads the quiz row, its questions and their options from one snapshot.
func (s *SQLStore) GetQuiz(ctx context.Context, courseID, quizID string, load Load) (Quiz, error) {
	var q Quiz
	err := db.WithReadTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		q, err = scanQuiz(tx.QueryRowContext(ctx, quizSelect+` WHERE q.id=$1 AND q.course_id=$2`, quizID, courseID))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("quiz not found in course")
		}
		if err != nil {
			return fmt.Errorf("get quiz: %w", err)
		}
		if load.Questions {
			q.Questions, err = loadQuestions(ctx, tx, q.ID)
		}
		return err
	})
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	var out []Quiz
	err := db.WithReadTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, quizSelect+` WHERE q.course_id=$1 ORDER BY q.created_at, q.id`, courseID)
		if err != nil {
			return fmt.Errorf("list quizzes: %w", err)
		}
		for rows.Next() {
			q, err := scanQuiz(rows)
			if err != nil {
				rows.Close()
				return err
			}
			out = append(out, q)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		// one statement at a time on the tx connection
		for i := range out {
			if out[i].Questions, err = loadQuestions(ctx, tx, out[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadQuestions(ctx context.Context, q db.Querier, quizID string) ([]Question, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, text, points FROM quiz_questions WHERE quiz_id=$1 ORDER BY position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := []Question{}
	index := map[string]int{}
	for rows.Next() {
		var qq Question
		if err := rows.Scan(&qq.ID, &qq.Text, &qq.Points); err != nil {
			rows.Close()
			return nil, err
		}
		qq.Options = []Option{}
		index[qq.ID] = len(questions)
		questions = append(questions, qq)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx, `SELECT o.id, o.question_id, o.text, o.is_correct
		FROM quiz_options o JOIN quiz_questions qq ON qq.id = o.question_id
		WHERE qq.quiz_id=$1 ORDER BY qq.position, o.position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			o   Option
			qid string
		)
		if err := rows.Scan(&o.ID, &qid, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := index[qid]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, rows.Err()
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz, replaceQuestions bool) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE quizzes SET title=$1, updated_at=$2 WHERE id=$3 AND course_id=$4`,
			q.Title, db.Millis(q.UpdatedAt), q.ID, q.CourseID)
		if err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("quiz not found in course")
		}
		if !replaceQuestions {
			return nil
		}
		if err := deleteQuestions(ctx, tx, q.ID); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, q.ID, q.Questions)
	})
}

func deleteQuestions(ctx context.Context, tx *sql.Tx, quizID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_options WHERE question_id IN (SELECT id FROM quiz_questions WHERE quiz_id=$1)`, quizID); err != nil {
		return fmt.Errorf("delete options: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE quiz_id=$1`, quizID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, courseID, quizID string) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1 AND course_id=$2`, quizID, courseID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("quiz not found in course")
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_submissions WHERE quiz_id=$1`, quizID); err != nil {
			return fmt.Errorf("delete submissions: %w", err)
		}
		if err := deleteQuestions(ctx, tx, quizID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID); err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		return nil
	})
}
