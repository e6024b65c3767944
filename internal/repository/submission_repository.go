package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// ErrSubmissionExists is returned when a participant already has a stored submission.
var ErrSubmissionExists = errors.New("submission already exists for participant")

// SubmissionRepository handles graded submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// ExistsByParticipant reports whether a submission is already stored for the participant.
func (r *SubmissionRepository) ExistsByParticipant(ctx context.Context, participantID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE participant_id = $1)`, participantID,
	).Scan(&exists)
	return exists, err
}

// Create stores a graded submission. The insert is conditional on the
// participant_id unique constraint, so a concurrent duplicate loses the
// race instead of producing a second row. Returns ErrSubmissionExists
// when the row was already there.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	results, err := json.Marshal(s.Results)
	if err != nil {
		return err
	}
	score, err := json.Marshal(s.Score)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO submissions (participant_id, email, results, score, submitted_at, auto_submitted)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (participant_id) DO NOTHING
		 RETURNING id`,
		s.ParticipantID, s.Email, results, score, s.SubmittedAt, s.AutoSubmitted,
	).Scan(&s.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubmissionExists
		}
		return err
	}
	return nil
}

// ListAll retrieves every stored submission ordered by submission time.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, participant_id, email, results, score, submitted_at, auto_submitted
		 FROM submissions ORDER BY submitted_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var (
			s       model.Submission
			results []byte
			score   []byte
		)
		if err := rows.Scan(&s.ID, &s.ParticipantID, &s.Email, &results, &score, &s.SubmittedAt, &s.AutoSubmitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &s.Results); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(score, &s.Score); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
