package service

import (
	"context"
	"testing"
	"time"

	"github.com/boiko-school/nmt-backend/internal/model"
)

type fakeLister struct {
	submissions []model.Submission
}

func (f *fakeLister) ListAll(context.Context) ([]model.Submission, error) {
	return f.submissions, nil
}

func entry(subject model.Subject, questionID, points int) model.ResultEntry {
	return model.ResultEntry{
		Subject:      subject,
		QuestionID:   questionID,
		QuestionType: model.QuestionTypeSingle,
		EarnedPoints: points,
		IsCorrect:    points > 0,
	}
}

func TestListGroupsByEmail(t *testing.T) {
	base := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	lister := &fakeLister{submissions: []model.Submission{
		{
			ParticipantID: 1,
			Email:         "a@school.ua",
			Score:         map[model.Subject]int{model.SubjectEng: 25, model.SubjectHistory: 30},
			Results:       []model.ResultEntry{entry(model.SubjectEng, 1, 1)},
			SubmittedAt:   base,
		},
		{
			ParticipantID: 2,
			Email:         "b@school.ua",
			Score:         map[model.Subject]int{model.SubjectEng: 4, model.SubjectHistory: 4},
			Results:       []model.ResultEntry{entry(model.SubjectHistory, 2, 0)},
			SubmittedAt:   base.Add(time.Minute),
		},
	}}
	svc := NewResultsService(lister)

	results, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d groups, want 2", len(results))
	}

	first := results[0]
	if first.Email != "a@school.ua" {
		t.Errorf("order not preserved: first group is %s", first.Email)
	}
	if scaled := first.Scaled[model.SubjectEng]; scaled == nil || *scaled != 162 {
		t.Errorf("eng raw 25 scaled = %v, want 162", scaled)
	}

	second := results[1]
	if scaled, ok := second.Scaled[model.SubjectEng]; !ok || scaled != nil {
		t.Errorf("eng raw 4 scaled = %v (present=%v), want explicit nil", scaled, ok)
	}
	if scaled, ok := second.Scaled[model.SubjectHistory]; !ok || scaled != nil {
		t.Errorf("history raw 4 scaled = %v (present=%v), want explicit nil", scaled, ok)
	}
}

func TestListUnionsDuplicateRowsWithoutDoubleCounting(t *testing.T) {
	base := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	lister := &fakeLister{submissions: []model.Submission{
		{
			ParticipantID: 1,
			Email:         "dup@school.ua",
			Score:         map[model.Subject]int{model.SubjectHistory: 2},
			Results: []model.ResultEntry{
				entry(model.SubjectHistory, 1, 1),
				entry(model.SubjectHistory, 2, 1),
			},
			SubmittedAt: base,
		},
		{
			ParticipantID: 1,
			Email:         "dup@school.ua",
			Score:         map[model.Subject]int{model.SubjectHistory: 3},
			Results: []model.ResultEntry{
				entry(model.SubjectHistory, 2, 1), // duplicate of first row
				entry(model.SubjectHistory, 3, 1),
			},
			SubmittedAt: base.Add(time.Second),
		},
	}}
	svc := NewResultsService(lister)

	results, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d groups, want 1", len(results))
	}

	g := results[0]
	if g.Score[model.SubjectHistory] != 2 {
		t.Errorf("score = %d, want first row's 2", g.Score[model.SubjectHistory])
	}
	if len(g.Results) != 3 {
		t.Errorf("unioned results = %d entries, want 3", len(g.Results))
	}
	seen := make(map[int]int)
	for _, e := range g.Results {
		seen[e.QuestionID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("question %d appears %d times", id, count)
		}
	}
}
