package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListBySubject retrieves the full question set for a subject in canonical order.
func (r *QuestionRepository) ListBySubject(ctx context.Context, subject model.Subject) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject, type, prompt, options, answer
		 FROM questions WHERE subject = $1 ORDER BY id`, subject,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Subject, &q.Type, &q.Prompt, &q.Options, &q.Answer); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// BulkInsert loads a batch of questions inside a single transaction.
func (r *QuestionRepository) BulkInsert(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(
			`INSERT INTO questions (id, subject, type, prompt, options, answer)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   subject = EXCLUDED.subject,
			   type = EXCLUDED.type,
			   prompt = EXCLUDED.prompt,
			   options = EXCLUDED.options,
			   answer = EXCLUDED.answer`,
			q.ID, q.Subject, q.Type, q.Prompt, q.Options, q.Answer,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range questions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
