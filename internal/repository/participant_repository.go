package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boiko-school/nmt-backend/internal/model"
)

var ErrDuplicateEmail = errors.New("participant with this email already exists")

// ParticipantRepository handles participant data access.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// GetByEmail retrieves a participant by their unique email.
func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role, password_hash, created_at
		 FROM participants WHERE email = $1`, email,
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a participant by ID.
func (r *ParticipantRepository) GetByID(ctx context.Context, id int) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role, password_hash, created_at
		 FROM participants WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new participant.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO participants (email, name, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Email, p.Name, p.Role, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}
