package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/service"
)

// JournalWorker consumes the answer journal queue and UPSERTs each slot
// into PostgreSQL. The Redis mirror serves reconnects; this journal is
// the durable record of what a participant had entered mid-exam.
type JournalWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewJournalWorker creates a new JournalWorker.
func NewJournalWorker(pool *pgxpool.Pool, rdb *redis.Client) *JournalWorker {
	return &JournalWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "journal_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *JournalWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *JournalWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.JournalAnswersQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var entry service.JournalEntry
	if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistEntry(ctx, &entry); err != nil {
		w.log.Error().Err(err).
			Int("participant_id", entry.ParticipantID).
			Str("subject", string(entry.Subject)).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.JournalAnswersQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *JournalWorker) persistEntry(ctx context.Context, e *service.JournalEntry) error {
	// UPSERT the slot — creates or updates without locking.
	_, err := w.pool.Exec(ctx,
		`INSERT INTO answer_journal (participant_id, subject, slot_index, answer)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (participant_id, subject, slot_index) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		e.ParticipantID, e.Subject, e.Index, []byte(e.Answer),
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *JournalWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.JournalAnswersQueue).Result()
		if err != nil {
			break
		}

		var entry service.JournalEntry
		if err := json.Unmarshal([]byte(result), &entry); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistEntry(ctx, &entry); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.JournalAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
