package service

import (
	"testing"
	"time"

	"github.com/boiko-school/nmt-backend/internal/model"
)

func TestParticipantStateFrozenWhilePaused(t *testing.T) {
	svc := &SessionService{}

	started := time.Now().Add(-30 * time.Minute)
	paused := started.Add(20 * time.Minute)
	d := model.SessionDescriptor{
		Status:       model.SessionPaused,
		StartedAt:    &started,
		PausedAt:     &paused,
		TotalSeconds: 7200,
	}

	// 20 minutes ran before the pause, so 6000 seconds remain. The value
	// is evaluated at the pause instant and must not shrink between reads.
	first := svc.GetParticipantState(d, false)
	if first.Remaining == nil {
		t.Fatal("paused state must still report a remaining value")
	}
	if *first.Remaining != 6000 {
		t.Fatalf("remaining while paused = %d, want 6000", *first.Remaining)
	}

	time.Sleep(1100 * time.Millisecond)
	second := svc.GetParticipantState(d, false)
	if second.Remaining == nil || *second.Remaining != *first.Remaining {
		t.Fatalf("remaining moved during pause: first=%d second=%v", *first.Remaining, second.Remaining)
	}
}

func TestParticipantStateBeforeStart(t *testing.T) {
	svc := &SessionService{}

	state := svc.GetParticipantState(model.SessionDescriptor{
		Status:       model.SessionLoading,
		TotalSeconds: 7200,
	}, false)

	if state.Status != model.SessionLoading {
		t.Errorf("status = %s, want loading", state.Status)
	}
	if state.Remaining != nil {
		t.Errorf("remaining before start = %d, want absent", *state.Remaining)
	}
}

func TestParticipantStateWhileStarted(t *testing.T) {
	svc := &SessionService{}

	started := time.Now().Add(-time.Hour)
	state := svc.GetParticipantState(model.SessionDescriptor{
		Status:       model.SessionStarted,
		StartedAt:    &started,
		TotalSeconds: 7200,
	}, true)

	if state.Remaining == nil {
		t.Fatal("started state must report a remaining value")
	}
	if *state.Remaining < 3598 || *state.Remaining > 3600 {
		t.Errorf("remaining = %d, want about 3600", *state.Remaining)
	}
	if !state.Submitted {
		t.Error("submitted flag must pass through")
	}
}
