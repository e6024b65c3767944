package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/model"
)

// JournalEntry is the queue payload consumed by the journal worker.
type JournalEntry struct {
	ParticipantID int             `json:"participant_id"`
	Subject       model.Subject   `json:"subject"`
	Index         int             `json:"index"`
	Answer        json.RawMessage `json:"answer"`
}

// AnswerService mirrors in-flight answers into Redis so a participant
// who reconnects mid-exam gets their slots back, and queues each write
// for the durable journal worker.
type AnswerService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(rdb *redis.Client) *AnswerService {
	return &AnswerService{
		rdb: rdb,
		log: log.With().Str("component", "answer_service").Logger(),
	}
}

// Save mirrors one answer slot into the participant's Redis hash and
// pushes a journal entry for the background writer.
func (s *AnswerService) Save(ctx context.Context, participantID int, subject model.Subject, index int, answer json.RawMessage) error {
	key := config.CacheKey.ParticipantAnswersKey(participantID, string(subject))
	if err := s.rdb.HSet(ctx, key, strconv.Itoa(index), []byte(answer)).Err(); err != nil {
		return fmt.Errorf("mirror answer: %w", err)
	}

	entry := JournalEntry{
		ParticipantID: participantID,
		Subject:       subject,
		Index:         index,
		Answer:        answer,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.JournalAnswersQueue, payload).Err(); err != nil {
		// The mirror already holds the slot. Journaling is best effort.
		s.log.Warn().Err(err).Int("participant_id", participantID).Msg("Journal enqueue failed")
	}
	return nil
}

// Load rebuilds a participant's answer set from the Redis mirror, one
// hash per subject. Missing hashes read as empty.
func (s *AnswerService) Load(ctx context.Context, participantID int) (exam.AnswerSet, error) {
	set := make(exam.AnswerSet)
	for _, subject := range model.Subjects {
		key := config.CacheKey.ParticipantAnswersKey(participantID, string(subject))
		fields, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("load answers for %s: %w", subject, err)
		}
		if len(fields) == 0 {
			continue
		}

		slots := make(map[int]json.RawMessage, len(fields))
		for field, raw := range fields {
			index, err := strconv.Atoi(field)
			if err != nil {
				s.log.Warn().Str("field", field).Msg("Skipping malformed answer slot")
				continue
			}
			slots[index] = json.RawMessage(raw)
		}
		set[subject] = slots
	}
	return set, nil
}

// Clear drops the participant's mirrored answers after grading.
func (s *AnswerService) Clear(ctx context.Context, participantID int) error {
	keys := make([]string, 0, len(model.Subjects))
	for _, subject := range model.Subjects {
		keys = append(keys, config.CacheKey.ParticipantAnswersKey(participantID, string(subject)))
	}
	return s.rdb.Del(ctx, keys...).Err()
}
