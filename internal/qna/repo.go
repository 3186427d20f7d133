package qna

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askhub/askhub/internal/platform/db"
	"github.com/askhub/askhub/internal/shared"
)

// Repository defines persistence operations for questions and answers.
type Repository interface {
	ListQuestions(ctx context.Context, search string, limit, offset int) ([]Question, int, error)
	GetQuestion(ctx context.Context, id int64) (*Question, error)
	InsertQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListAnswersByQuestion(ctx context.Context, questionID int64) ([]Answer, error)
	ListAnswers(ctx context.Context, search string, limit, offset int) ([]Answer, int, error)
	GetAnswer(ctx context.Context, id int64) (*Answer, error)
	InsertAnswer(ctx context.Context, answer *Answer) error
	DeleteAnswer(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListQuestions returns a page of questions, newest first, optionally
// filtered by a text substring. Page and total share one transaction.
func (r *PGRepository) ListQuestions(ctx context.Context, search string, limit, offset int) ([]Question, int, error) {
	pattern := "%" + search + "%"
	var questions []Question
	var total int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, text, author_id, created_at
			FROM questions
			WHERE $1 = '' OR text ILIKE $2
			ORDER BY created_at DESC, id DESC
			LIMIT $3 OFFSET $4`,
			search, pattern, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var q Question
			if err := rows.Scan(&q.ID, &q.Text, &q.AuthorID, &q.CreatedAt); err != nil {
				return err
			}
			questions = append(questions, q)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `SELECT count(*) FROM questions WHERE $1 = '' OR text ILIKE $2`, search, pattern).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// GetQuestion fetches a single question.
func (r *PGRepository) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	var q Question
	err := r.pool.QueryRow(ctx, `SELECT id, text, author_id, created_at FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Text, &q.AuthorID, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// InsertQuestion persists a new question.
func (r *PGRepository) InsertQuestion(ctx context.Context, question *Question) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO questions (text, author_id) VALUES ($1, $2)
		RETURNING id, created_at`,
		question.Text, question.AuthorID,
	).Scan(&question.ID, &question.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

// DeleteQuestion removes the question; its answers go with it through the
// ON DELETE CASCADE foreign key.
func (r *PGRepository) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListAnswersByQuestion returns every answer to a question, oldest first.
func (r *PGRepository) ListAnswersByQuestion(ctx context.Context, questionID int64) ([]Answer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question_id, user_id, text, created_at
		FROM answers
		WHERE question_id = $1
		ORDER BY created_at ASC, id ASC`,
		questionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Text, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListAnswers returns a page of answers across all questions, newest first.
// Page and total share one transaction.
func (r *PGRepository) ListAnswers(ctx context.Context, search string, limit, offset int) ([]Answer, int, error) {
	pattern := "%" + search + "%"
	var answers []Answer
	var total int
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, question_id, user_id, text, created_at
			FROM answers
			WHERE $1 = '' OR text ILIKE $2
			ORDER BY created_at DESC, id DESC
			LIMIT $3 OFFSET $4`,
			search, pattern, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a Answer
			if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Text, &a.CreatedAt); err != nil {
				return err
			}
			answers = append(answers, a)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `SELECT count(*) FROM answers WHERE $1 = '' OR text ILIKE $2`, search, pattern).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return answers, total, nil
}

// GetAnswer fetches a single answer.
func (r *PGRepository) GetAnswer(ctx context.Context, id int64) (*Answer, error) {
	var a Answer
	err := r.pool.QueryRow(ctx, `SELECT id, question_id, user_id, text, created_at FROM answers WHERE id = $1`, id).
		Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Text, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// InsertAnswer persists a new answer.
func (r *PGRepository) InsertAnswer(ctx context.Context, answer *Answer) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO answers (question_id, user_id, text) VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		answer.QuestionID, answer.UserID, answer.Text,
	).Scan(&answer.ID, &answer.CreatedAt)
}

// DeleteAnswer removes the answer.
func (r *PGRepository) DeleteAnswer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
