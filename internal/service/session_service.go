package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
	"github.com/boiko-school/nmt-backend/internal/session"
)

// ErrInvalidTransition is returned for a session control action that the
// state machine does not allow from the current status.
var ErrInvalidTransition = errors.New("invalid session transition")

// SessionService owns the single shared session descriptor. PostgreSQL
// is the durable copy, Redis holds a snapshot for fast reads, and every
// change is published on a pub/sub channel for live connections.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	rdb         *redis.Client
	cfg         *config.Config
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessionRepo *repository.SessionRepository, rdb *redis.Client, cfg *config.Config) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		rdb:         rdb,
		cfg:         cfg,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// Get returns the current descriptor. Reads the Redis snapshot first and
// falls back to PostgreSQL on a miss, re-warming the snapshot. A session
// that has never been written reads as loading.
func (s *SessionService) Get(ctx context.Context) (model.SessionDescriptor, error) {
	key := config.CacheKey.SessionDescriptorKey()
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var d model.SessionDescriptor
		if err := json.Unmarshal(data, &d); err == nil {
			return d, nil
		}
		s.log.Warn().Msg("Corrupt session snapshot, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Session snapshot read failed, falling back to database")
	}

	d, err := s.sessionRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoDescriptor) {
			return model.SessionDescriptor{
				Status:       model.SessionLoading,
				TotalSeconds: s.cfg.ExamTotalSeconds,
			}, nil
		}
		return model.SessionDescriptor{}, fmt.Errorf("get descriptor: %w", err)
	}

	if payload, err := json.Marshal(d); err == nil {
		if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Session snapshot re-warm failed")
		}
	}

	return *d, nil
}

// Start begins the countdown. Allowed only for a session whose start
// instant has never been set: a paused session continues via Resume.
func (s *SessionService) Start(ctx context.Context) (model.SessionDescriptor, error) {
	return s.transition(ctx, model.SessionStarted, session.StartAllowed, func(d *model.SessionDescriptor, now time.Time) {
		d.StartedAt = &now
		d.PausedAt = nil
		d.PausedSeconds = 0
		d.TotalSeconds = s.cfg.ExamTotalSeconds
	})
}

// Pause freezes the countdown. Allowed only from started.
func (s *SessionService) Pause(ctx context.Context) (model.SessionDescriptor, error) {
	return s.transition(ctx, model.SessionPaused, nil, func(d *model.SessionDescriptor, now time.Time) {
		d.PausedAt = &now
	})
}

// Resume continues a paused countdown. The paused interval is credited so
// the remaining time picks up where it stopped.
func (s *SessionService) Resume(ctx context.Context) (model.SessionDescriptor, error) {
	return s.transition(ctx, model.SessionStarted, nil, func(d *model.SessionDescriptor, now time.Time) {
		if d.PausedAt != nil {
			d.PausedSeconds += now.Unix() - d.PausedAt.Unix()
			d.PausedAt = nil
		}
	})
}

// Stop ends the session. Allowed from any non-stopped status and terminal.
func (s *SessionService) Stop(ctx context.Context) (model.SessionDescriptor, error) {
	return s.transition(ctx, model.SessionStopped, nil, func(d *model.SessionDescriptor, now time.Time) {
		d.PausedAt = nil
	})
}

// transition validates the move, applies the mutation, persists the
// descriptor and broadcasts it. A non-nil guard adds a descriptor-level
// check on top of the status machine.
func (s *SessionService) transition(ctx context.Context, to model.SessionStatus, guard func(model.SessionDescriptor) bool, mutate func(*model.SessionDescriptor, time.Time)) (model.SessionDescriptor, error) {
	d, err := s.Get(ctx)
	if err != nil {
		return model.SessionDescriptor{}, err
	}

	if !session.CanTransition(d.Status, to) {
		return model.SessionDescriptor{}, ErrInvalidTransition
	}
	if guard != nil && !guard(d) {
		return model.SessionDescriptor{}, ErrInvalidTransition
	}

	now := time.Now()
	d.Status = to
	mutate(&d, now)
	d.UpdatedAt = now

	if err := s.sessionRepo.Upsert(ctx, &d); err != nil {
		return model.SessionDescriptor{}, fmt.Errorf("persist descriptor: %w", err)
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return model.SessionDescriptor{}, fmt.Errorf("marshal descriptor: %w", err)
	}

	key := config.CacheKey.SessionDescriptorKey()
	if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Session snapshot write failed")
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SessionChannel(), payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Session broadcast failed")
	}

	s.log.Info().Str("status", string(to)).Msg("Session transitioned")
	return d, nil
}

// ParticipantState is the session view served to a participant on load.
type ParticipantState struct {
	Status    model.SessionStatus `json:"status"`
	Remaining *int64              `json:"remaining"`
	Submitted bool                `json:"submitted"`
}

// GetParticipantState resolves the descriptor into the participant view:
// the status, the remaining seconds when the countdown is derivable, and
// whether this participant has already submitted. While the session is
// paused the countdown is evaluated at the pause instant, so the value
// stays frozen until Resume credits the interval.
func (s *SessionService) GetParticipantState(d model.SessionDescriptor, submitted bool) ParticipantState {
	state := ParticipantState{
		Status:    d.Status,
		Submitted: submitted,
	}
	now := time.Now()
	if d.Status == model.SessionPaused && d.PausedAt != nil {
		now = *d.PausedAt
	}
	if remaining, ok := d.Remaining(now); ok {
		state.Remaining = &remaining
	}
	return state
}
