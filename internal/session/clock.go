package session

import (
	"context"
	"time"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// ClockEvent is one recomputation of the countdown. Expired is set on exactly
// one event per clock lifetime: the first time the remaining value hits zero.
type ClockEvent struct {
	Remaining int64 `json:"remaining"`
	Expired   bool  `json:"expired"`
}

// Clock derives the remaining exam time from descriptor snapshots and wall
// clock. It never fabricates a value: while the session is not started, or the
// start instant has not resolved yet, it holds the last computed value and
// emits nothing.
type Clock struct {
	now          func() time.Time
	last         int64
	known        bool
	expiredFired bool
}

// NewClock returns a Clock reading wall time from now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Recompute derives the countdown from the descriptor. ok is false when the
// clock must hold its previous value instead of emitting: the session is not
// in started, or the start instant is not yet resolvable.
func (c *Clock) Recompute(d model.SessionDescriptor) (ClockEvent, bool) {
	if d.Status != model.SessionStarted {
		return ClockEvent{}, false
	}
	remaining, ok := d.Remaining(c.now())
	if !ok {
		return ClockEvent{}, false
	}

	c.last = remaining
	c.known = true

	ev := ClockEvent{Remaining: remaining}
	if remaining == 0 && !c.expiredFired {
		c.expiredFired = true
		ev.Expired = true
	}
	return ev, true
}

// Last returns the most recently computed remaining value. known is false if
// the clock has never computed one.
func (c *Clock) Last() (remaining int64, known bool) {
	return c.last, c.known
}

// Runner drives a Clock from two independent event sources: descriptor
// snapshots pushed by the control channel and a fixed 1 Hz tick. The ticker
// exists only while the session is started and is stopped the moment it
// leaves started, so no drift accumulates while paused or stopped.
type Runner struct {
	clock    *Clock
	state    *State
	interval time.Duration

	// Events carries every recomputed clock value. Closed when Run returns.
	Events chan ClockEvent
}

// NewRunner wires a Runner around an existing state cache and clock.
func NewRunner(state *State, clock *Clock, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		clock:    clock,
		state:    state,
		interval: interval,
		Events:   make(chan ClockEvent, 8),
	}
}

// Run consumes descriptor updates until ctx is cancelled or updates closes.
// Each update replaces the state cache and recomputes immediately; ticks
// recompute against the cached snapshot. No ordering between the two sources
// is assumed.
func (r *Runner) Run(ctx context.Context, updates <-chan model.SessionDescriptor) {
	defer close(r.Events)

	var ticker *time.Ticker
	var tickC <-chan time.Time

	syncTicker := func(status model.SessionStatus) {
		if status == model.SessionStarted {
			if ticker == nil {
				ticker = time.NewTicker(r.interval)
				tickC = ticker.C
			}
			return
		}
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	emit := func() bool {
		ev, ok := r.clock.Recompute(r.state.Current())
		if !ok {
			return true
		}
		select {
		case r.Events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	syncTicker(r.state.Current().Status)
	if !emit() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d, open := <-updates:
			if !open {
				return
			}
			r.state.Apply(d)
			syncTicker(d.Status)
			if !emit() {
				return
			}
		case <-tickC:
			if !emit() {
				return
			}
		}
	}
}
