package session

import (
	"context"
	"testing"
	"time"

	"github.com/boiko-school/nmt-backend/internal/model"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func startedDescriptor(start time.Time, paused, total int64) model.SessionDescriptor {
	return model.SessionDescriptor{
		Status:        model.SessionStarted,
		StartedAt:     &start,
		PausedSeconds: paused,
		TotalSeconds:  total,
	}
}

func TestClockRemainingFormula(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		now    time.Time
		paused int64
		total  int64
		want   int64
	}{
		{"at start", start, 0, 7200, 7200},
		{"one hour in", start.Add(time.Hour), 0, 7200, 3600},
		{"pause credit restored", start.Add(2 * time.Hour), 600, 7200, 600},
		{"exactly expired", start.Add(2 * time.Hour), 0, 7200, 0},
		{"clamped at zero", start.Add(3 * time.Hour), 0, 7200, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClock(fixedNow(tc.now))
			ev, ok := c.Recompute(startedDescriptor(start, tc.paused, tc.total))
			if !ok {
				t.Fatal("Recompute() held while started with a resolved start instant")
			}
			if ev.Remaining != tc.want {
				t.Errorf("remaining = %d, want %d", ev.Remaining, tc.want)
			}
		})
	}
}

func TestClockNonIncreasingWhileStarted(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := NewClock(nil)

	prev := int64(7200 + 1)
	for s := 0; s <= 7300; s += 100 {
		c.now = fixedNow(start.Add(time.Duration(s) * time.Second))
		ev, ok := c.Recompute(startedDescriptor(start, 0, 7200))
		if !ok {
			t.Fatalf("Recompute() held at +%ds", s)
		}
		if ev.Remaining > prev {
			t.Fatalf("remaining increased: %d after %d", ev.Remaining, prev)
		}
		prev = ev.Remaining
	}
}

func TestClockHoldsWhileNotStarted(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := NewClock(fixedNow(start.Add(time.Hour)))

	if _, ok := c.Recompute(model.SessionDescriptor{Status: model.SessionPaused, StartedAt: &start, TotalSeconds: 7200}); ok {
		t.Error("Recompute() emitted while paused")
	}
	if _, ok := c.Recompute(model.SessionDescriptor{Status: model.SessionStopped, TotalSeconds: 7200}); ok {
		t.Error("Recompute() emitted while stopped")
	}
	if _, known := c.Last(); known {
		t.Error("Last() known without a single successful computation")
	}

	// A started snapshot computes; a paused one afterwards freezes the value.
	ev, ok := c.Recompute(startedDescriptor(start, 0, 7200))
	if !ok || ev.Remaining != 3600 {
		t.Fatalf("Recompute() = (%v, %v), want remaining 3600", ev, ok)
	}
	if _, ok := c.Recompute(model.SessionDescriptor{Status: model.SessionPaused, StartedAt: &start, TotalSeconds: 7200}); ok {
		t.Error("Recompute() emitted after leaving started")
	}
	if last, known := c.Last(); !known || last != 3600 {
		t.Errorf("Last() = (%d, %v), want frozen 3600", last, known)
	}
}

func TestClockHoldsOnUnresolvedStartInstant(t *testing.T) {
	// Descriptor arrived before the time-authority value attached: status is
	// started but the start instant is still nil.
	c := NewClock(fixedNow(time.Now()))
	if _, ok := c.Recompute(model.SessionDescriptor{Status: model.SessionStarted, TotalSeconds: 7200}); ok {
		t.Error("Recompute() fabricated a value without a start instant")
	}
}

func TestClockExpiresExactlyOnce(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := NewClock(fixedNow(start.Add(7200 * time.Second)))
	d := startedDescriptor(start, 0, 7200)

	ev, ok := c.Recompute(d)
	if !ok || ev.Remaining != 0 || !ev.Expired {
		t.Fatalf("first zero tick = (%+v, %v), want expired at 0", ev, ok)
	}

	// Further ticks at zero keep reporting 0 but never re-fire the signal.
	for i := 0; i < 5; i++ {
		c.now = fixedNow(start.Add(time.Duration(7200+i) * time.Second))
		ev, ok = c.Recompute(d)
		if !ok || ev.Remaining != 0 {
			t.Fatalf("tick %d = (%+v, %v), want remaining 0", i, ev, ok)
		}
		if ev.Expired {
			t.Fatal("time-expired signal fired more than once")
		}
	}
}

func TestClockPauseResumeUsesSameStartInstant(t *testing.T) {
	// Start at T0, pause at T0+30m for 15m, resume. At T0+60m the participant
	// has consumed 45m of exam time: remaining = 7200 - (3600 - 900) = 4500.
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := NewClock(fixedNow(start.Add(time.Hour)))

	ev, ok := c.Recompute(startedDescriptor(start, 900, 7200))
	if !ok {
		t.Fatal("Recompute() held after resume")
	}
	if ev.Remaining != 4500 {
		t.Errorf("remaining after resume = %d, want 4500", ev.Remaining)
	}
}

func TestRunnerEmitsExpiredOnceAndStops(t *testing.T) {
	start := time.Now().Add(-3 * time.Hour)
	state := NewState()
	state.Apply(startedDescriptor(start, 0, 7200))

	runner := NewRunner(state, NewClock(nil), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan model.SessionDescriptor)
	done := make(chan struct{})
	go func() {
		runner.Run(ctx, updates)
		close(done)
	}()

	expired := 0
	seen := 0
	timeout := time.After(time.Second)
	for seen < 5 {
		select {
		case ev := <-runner.Events:
			seen++
			if ev.Remaining != 0 {
				t.Errorf("remaining = %d, want 0 for a long-expired session", ev.Remaining)
			}
			if ev.Expired {
				expired++
			}
		case <-timeout:
			t.Fatal("runner produced no events")
		}
	}
	if expired != 1 {
		t.Errorf("expired signals = %d, want exactly 1", expired)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on context cancellation")
	}
}

func TestRunnerRecomputesOnDescriptorPush(t *testing.T) {
	state := NewState() // loading: no ticker, no events
	runner := NewRunner(state, NewClock(nil), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan model.SessionDescriptor, 1)
	go runner.Run(ctx, updates)

	start := time.Now().Add(-30 * time.Minute)
	updates <- startedDescriptor(start, 0, 7200)

	select {
	case ev := <-runner.Events:
		// Allow one second of slack around the expected 5400.
		if ev.Remaining < 5399 || ev.Remaining > 5401 {
			t.Errorf("remaining = %d, want ~5400", ev.Remaining)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after a descriptor push")
	}
}
