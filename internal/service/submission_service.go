package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

// ErrAlreadySubmitted is returned when the participant's submission is
// already durable.
var ErrAlreadySubmitted = errors.New("participant already submitted")

// SubmissionStore is the durable side of the coordinator.
type SubmissionStore interface {
	ExistsByParticipant(ctx context.Context, participantID int) (bool, error)
	Create(ctx context.Context, s *model.Submission) error
}

// QuestionSource provides canonical question sets for grading.
type QuestionSource interface {
	ListBySubject(ctx context.Context, subject model.Subject) ([]model.Question, error)
}

// SubmissionService grades an answer set exactly once per participant.
// A per-participant mutex serializes concurrent attempts from the same
// identity, a local cache short-circuits repeats on this process, the
// store's existence check guards across restarts, and the conditional
// insert settles races between processes.
type SubmissionService struct {
	store     SubmissionStore
	questions QuestionSource

	locks     sync.Map // participant id -> *sync.Mutex
	submitted sync.Map // participant id -> *model.Submission
	log       zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(store SubmissionStore, questions QuestionSource) *SubmissionService {
	return &SubmissionService{
		store:     store,
		questions: questions,
		log:       log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades the answer set and stores the result. Repeat calls for
// the same participant on this process return the already-graded record.
// A submission found durable elsewhere returns ErrAlreadySubmitted.
func (s *SubmissionService) Submit(ctx context.Context, p *model.Participant, answers exam.AnswerSet, autoSubmitted bool) (*model.Submission, error) {
	muAny, _ := s.locks.LoadOrStore(p.ID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if cached, ok := s.submitted.Load(p.ID); ok {
		return cached.(*model.Submission), nil
	}

	exists, err := s.store.ExistsByParticipant(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if exists {
		return nil, ErrAlreadySubmitted
	}

	submission, err := s.grade(ctx, p, answers, autoSubmitted)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrSubmissionExists) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("store submission: %w", err)
	}

	s.submitted.Store(p.ID, submission)
	s.log.Info().
		Int("participant_id", p.ID).
		Bool("auto", autoSubmitted).
		Msg("Submission stored")
	return submission, nil
}

// grade walks every subject's canonical question set in id order, scores
// the answered slots and skips the rest. Unanswered questions never
// appear in the results, but every subject gets a score entry even when
// it is zero.
func (s *SubmissionService) grade(ctx context.Context, p *model.Participant, answers exam.AnswerSet, autoSubmitted bool) (*model.Submission, error) {
	submission := &model.Submission{
		ParticipantID: p.ID,
		Email:         p.Email,
		Score:         make(map[model.Subject]int, len(model.Subjects)),
		SubmittedAt:   time.Now(),
		AutoSubmitted: autoSubmitted,
	}

	for _, subject := range model.Subjects {
		questions, err := s.questions.ListBySubject(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("load questions for %s: %w", subject, err)
		}

		total := 0
		slots := answers[subject]
		for i, q := range questions {
			userAnswer, ok := slots[i+1]
			if !ok {
				continue
			}

			result := exam.Score(q, userAnswer)
			total += result.EarnedPoints
			submission.Results = append(submission.Results, model.ResultEntry{
				Subject:       subject,
				QuestionID:    q.ID,
				QuestionType:  q.Type,
				UserAnswer:    userAnswer,
				CorrectAnswer: q.Answer,
				EarnedPoints:  result.EarnedPoints,
				IsCorrect:     result.IsCorrect,
			})
		}
		submission.Score[subject] = total
	}

	return submission, nil
}
