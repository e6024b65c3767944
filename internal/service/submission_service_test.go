package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/boiko-school/nmt-backend/internal/exam"
	"github.com/boiko-school/nmt-backend/internal/model"
	"github.com/boiko-school/nmt-backend/internal/repository"
)

type fakeStore struct {
	mu      sync.Mutex
	rows    map[int]*model.Submission
	exists  map[int]bool
	creates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int]*model.Submission), exists: make(map[int]bool)}
}

func (f *fakeStore) ExistsByParticipant(_ context.Context, participantID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists[participantID] || f.rows[participantID] != nil, nil
}

func (f *fakeStore) Create(_ context.Context, s *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.rows[s.ParticipantID] != nil {
		return repository.ErrSubmissionExists
	}
	f.rows[s.ParticipantID] = s
	return nil
}

type fakeQuestions struct {
	bank map[model.Subject][]model.Question
}

func (f *fakeQuestions) ListBySubject(_ context.Context, subject model.Subject) ([]model.Question, error) {
	return f.bank[subject], nil
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func testQuestions(t *testing.T) *fakeQuestions {
	return &fakeQuestions{bank: map[model.Subject][]model.Question{
		model.SubjectHistory: {
			{ID: 1, Subject: model.SubjectHistory, Type: model.QuestionTypeSingle, Answer: raw(t, "a")},
			{ID: 2, Subject: model.SubjectHistory, Type: model.QuestionTypeInput, Answer: raw(t, "1914")},
			{ID: 3, Subject: model.SubjectHistory, Type: model.QuestionTypeSingle, Answer: raw(t, "c")},
		},
		model.SubjectEng: {
			{ID: 10, Subject: model.SubjectEng, Type: model.QuestionTypeSingle, Answer: raw(t, "b")},
		},
	}}
}

func testParticipant() *model.Participant {
	return &model.Participant{ID: 7, Email: "student@school.ua", Role: model.RoleParticipant}
}

func TestSubmitGradesAnsweredSlotsOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store, testQuestions(t))

	answers := exam.AnswerSet{
		model.SubjectHistory: {
			1: raw(t, "a"),    // correct single, 1 point
			2: raw(t, "1915"), // wrong input, 0 points
			// slot 3 unanswered
		},
	}

	sub, err := svc.Submit(context.Background(), testParticipant(), answers, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(sub.Results) != 2 {
		t.Fatalf("results = %d entries, want 2 (unanswered omitted)", len(sub.Results))
	}
	for _, entry := range sub.Results {
		if entry.QuestionID == 3 {
			t.Error("unanswered question 3 appears in results")
		}
	}

	if got := sub.Score[model.SubjectHistory]; got != 1 {
		t.Errorf("history score = %d, want 1", got)
	}
	if got, ok := sub.Score[model.SubjectEng]; !ok || got != 0 {
		t.Errorf("eng score = %d (present=%v), want explicit 0", got, ok)
	}
	if sub.AutoSubmitted {
		t.Error("AutoSubmitted = true for manual submit")
	}
}

func TestSubmitSetsAutoSubmittedFlag(t *testing.T) {
	svc := NewSubmissionService(newFakeStore(), testQuestions(t))

	sub, err := svc.Submit(context.Background(), testParticipant(), exam.AnswerSet{}, true)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !sub.AutoSubmitted {
		t.Error("AutoSubmitted = false for expiry-driven submit")
	}
}

func TestSubmitRepeatReturnsCachedRecord(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store, testQuestions(t))
	p := testParticipant()

	answers := exam.AnswerSet{
		model.SubjectHistory: {1: raw(t, "a")},
	}

	first, err := svc.Submit(context.Background(), p, answers, false)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// Repeat with different answers must not regrade.
	second, err := svc.Submit(context.Background(), p, exam.AnswerSet{
		model.SubjectHistory: {1: raw(t, "z")},
	}, false)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if first != second {
		t.Error("repeat submit returned a different record")
	}
	if store.creates != 1 {
		t.Errorf("store.Create called %d times, want 1", store.creates)
	}
}

func TestSubmitRejectsWhenDurableCopyExists(t *testing.T) {
	store := newFakeStore()
	store.exists[7] = true
	svc := NewSubmissionService(store, testQuestions(t))

	_, err := svc.Submit(context.Background(), testParticipant(), exam.AnswerSet{}, false)
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
	if store.creates != 0 {
		t.Errorf("store.Create called %d times, want 0", store.creates)
	}
}

func TestSubmitLosingInsertRaceMapsToAlreadySubmitted(t *testing.T) {
	store := newFakeStore()
	// Another process wins between the existence check and the insert.
	store.rows[7] = &model.Submission{ParticipantID: 7}
	svc := NewSubmissionService(&racingStore{fakeStore: store}, testQuestions(t))

	_, err := svc.Submit(context.Background(), testParticipant(), exam.AnswerSet{}, false)
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
}

// racingStore reports no existing row so the coordinator reaches the
// conditional insert, which then loses.
type racingStore struct {
	*fakeStore
}

func (r *racingStore) ExistsByParticipant(context.Context, int) (bool, error) {
	return false, nil
}

func TestSubmitConcurrentSameParticipantWritesOnce(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store, testQuestions(t))
	p := testParticipant()

	answers := exam.AnswerSet{
		model.SubjectHistory: {1: raw(t, "a")},
	}

	const attempts = 16
	results := make([]*model.Submission, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub, err := svc.Submit(context.Background(), p, answers, false)
			if err != nil {
				t.Errorf("Submit %d: %v", i, err)
				return
			}
			results[i] = sub
		}(i)
	}
	wg.Wait()

	if store.creates != 1 {
		t.Errorf("store.Create called %d times, want 1", store.creates)
	}
	for i := 1; i < attempts; i++ {
		if results[i] != results[0] {
			t.Fatalf("attempt %d got a different record", i)
		}
	}
}
