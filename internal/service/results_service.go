package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/model"
)

// SubmissionLister provides the stored submissions to aggregate.
type SubmissionLister interface {
	ListAll(ctx context.Context) ([]model.Submission, error)
}

// GroupedResult is one participant's aggregated outcome in the reviewer
// table. Scaled holds the rating-scale conversion per subject, nil when
// the raw score is below the scale's domain.
type GroupedResult struct {
	Email         string                 `json:"email"`
	Score         map[model.Subject]int  `json:"score"`
	Scaled        map[model.Subject]*int `json:"scaled"`
	SubmittedAt   string                 `json:"submitted_at"`
	AutoSubmitted bool                   `json:"auto_submitted"`
	Results       []model.ResultEntry    `json:"results"`
}

// ResultsService aggregates stored submissions for review.
type ResultsService struct {
	submissionRepo SubmissionLister
	log            zerolog.Logger
}

// NewResultsService creates a new ResultsService.
func NewResultsService(submissionRepo SubmissionLister) *ResultsService {
	return &ResultsService{
		submissionRepo: submissionRepo,
		log:            log.With().Str("component", "results_service").Logger(),
	}
}

// List groups every stored submission by email. The unique constraint
// keeps one row per participant, but rows written before it was in place
// may duplicate an email, so grouping stays defensive: the first row's
// score wins and the result entries are unioned without double counting
// a question.
func (s *ResultsService) List(ctx context.Context) ([]GroupedResult, error) {
	submissions, err := s.submissionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	var (
		order   []string
		grouped = make(map[string]*GroupedResult)
		seen    = make(map[string]map[string]bool)
	)

	for _, sub := range submissions {
		g, ok := grouped[sub.Email]
		if !ok {
			g = &GroupedResult{
				Email:         sub.Email,
				Score:         sub.Score,
				Scaled:        scaledScores(sub.Score),
				SubmittedAt:   sub.SubmittedAt.UTC().Format(time.RFC3339),
				AutoSubmitted: sub.AutoSubmitted,
			}
			grouped[sub.Email] = g
			seen[sub.Email] = make(map[string]bool)
			order = append(order, sub.Email)
		} else {
			s.log.Warn().Str("email", sub.Email).Msg("Duplicate submission rows for email, unioning results")
		}

		for _, entry := range sub.Results {
			key := fmt.Sprintf("%s:%d", entry.Subject, entry.QuestionID)
			if seen[sub.Email][key] {
				continue
			}
			seen[sub.Email][key] = true
			g.Results = append(g.Results, entry)
		}
	}

	results := make([]GroupedResult, 0, len(order))
	for _, email := range order {
		results = append(results, *grouped[email])
	}
	return results, nil
}

func scaledScores(score map[model.Subject]int) map[model.Subject]*int {
	scaled := make(map[model.Subject]*int, len(score))
	for subject, raw := range score {
		if v, ok := exam.ScaledScore(subject, raw); ok {
			value := v
			scaled[subject] = &value
		} else {
			scaled[subject] = nil
		}
	}
	return scaled
}
