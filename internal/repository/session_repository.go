package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// ErrNoDescriptor is returned when the session row has never been written.
var ErrNoDescriptor = errors.New("session descriptor not found")

// SessionRepository persists the single shared session descriptor.
// The table holds at most one row, keyed by a fixed id.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Get retrieves the current descriptor.
func (r *SessionRepository) Get(ctx context.Context) (*model.SessionDescriptor, error) {
	d := &model.SessionDescriptor{}
	err := r.pool.QueryRow(ctx,
		`SELECT status, started_at, paused_at, paused_seconds, total_seconds, updated_at
		 FROM exam_session WHERE id = 1`,
	).Scan(&d.Status, &d.StartedAt, &d.PausedAt, &d.PausedSeconds, &d.TotalSeconds, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDescriptor
		}
		return nil, err
	}
	return d, nil
}

// Upsert writes the descriptor, replacing any previous state.
func (r *SessionRepository) Upsert(ctx context.Context, d *model.SessionDescriptor) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_session (id, status, started_at, paused_at, paused_seconds, total_seconds, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status,
		   started_at = EXCLUDED.started_at,
		   paused_at = EXCLUDED.paused_at,
		   paused_seconds = EXCLUDED.paused_seconds,
		   total_seconds = EXCLUDED.total_seconds,
		   updated_at = EXCLUDED.updated_at`,
		d.Status, d.StartedAt, d.PausedAt, d.PausedSeconds, d.TotalSeconds, d.UpdatedAt,
	)
	return err
}
