package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/config"
	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

// ErrNoQuestions is returned when the bank holds nothing for a subject.
var ErrNoQuestions = errors.New("no questions for subject")

// QuestionService serves the question bank. The canonical set lives in
// PostgreSQL; Redis holds a warmed copy keyed per subject so exam-day
// reads never touch the database.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, rdb *redis.Client) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// WarmCache loads every subject's question set from PostgreSQL into Redis.
// Called on startup so the first participant load does not stampede the
// database.
func (s *QuestionService) WarmCache(ctx context.Context) error {
	for _, subject := range model.Subjects {
		questions, err := s.questionRepo.ListBySubject(ctx, subject)
		if err != nil {
			return fmt.Errorf("list questions for %s: %w", subject, err)
		}
		if len(questions) == 0 {
			s.log.Warn().Str("subject", string(subject)).Msg("No questions to warm, skipping")
			continue
		}

		payload, err := json.Marshal(questions)
		if err != nil {
			return fmt.Errorf("marshal questions for %s: %w", subject, err)
		}

		key := config.CacheKey.QuestionPayloadKey(string(subject))
		if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
			return fmt.Errorf("cache questions for %s: %w", subject, err)
		}

		s.log.Info().
			Str("subject", string(subject)).
			Int("questions", len(questions)).
			Msg("Question cache warmed")
	}
	return nil
}

// ListBySubject returns the canonical, id-ordered question set for a
// subject, correct answers included. Reads the Redis copy first and falls
// back to PostgreSQL on a miss, re-warming the cache on the way out.
func (s *QuestionService) ListBySubject(ctx context.Context, subject model.Subject) ([]model.Question, error) {
	key := config.CacheKey.QuestionPayloadKey(string(subject))
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var questions []model.Question
		if err := json.Unmarshal(data, &questions); err == nil {
			return questions, nil
		}
		s.log.Warn().Str("subject", string(subject)).Msg("Corrupt question cache, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("subject", string(subject)).Msg("Question cache read failed, falling back to database")
	}

	questions, err := s.questionRepo.ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	// Self-heal the cache for the next reader.
	if payload, err := json.Marshal(questions); err == nil {
		if err := s.rdb.Set(ctx, key, payload, 0).Err(); err != nil {
			s.log.Warn().Err(err).Str("subject", string(subject)).Msg("Question cache re-warm failed")
		}
	}

	return questions, nil
}

// Paper returns the participant-facing paper for a subject: a fresh
// unbiased shuffle of each single-choice question's options, with correct
// answers stripped. Every call produces a new arrangement.
func (s *QuestionService) Paper(ctx context.Context, subject model.Subject) ([]model.QuestionForParticipant, error) {
	questions, err := s.ListBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}

	paper := make([]model.QuestionForParticipant, len(questions))
	for i, q := range questions {
		paper[i] = q.StripAnswer()
	}
	return exam.ShuffleOptions(paper), nil
}
