package model

import "time"

// SessionStatus enumerates exam session phases.
type SessionStatus string

const (
	SessionLoading SessionStatus = "loading"
	SessionStarted SessionStatus = "started"
	SessionPaused  SessionStatus = "paused"
	SessionStopped SessionStatus = "stopped"
)

// SessionDescriptor is the authoritative, externally-controlled record of the
// exam phase and timing. It is replaced wholesale on every control-surface
// update and broadcast as an immutable snapshot; readers never mutate it.
//
// StartedAt is set once, on the first transition to started, and never changes
// afterwards — pausing does not reset it. Elapsed time is corrected via
// PausedSeconds, which only ever grows. PausedAt is bookkeeping for the
// control surface: the instant the current pause began, folded into
// PausedSeconds on resume.
type SessionDescriptor struct {
	Status        SessionStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	PausedAt      *time.Time    `json:"paused_at,omitempty"`
	PausedSeconds int64         `json:"paused_seconds"`
	TotalSeconds  int64         `json:"total_seconds"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Remaining derives the countdown value at the given instant:
//
//	remaining = max(total - (now - started - paused), 0)
//
// ok is false when StartedAt is not yet resolvable, in which case the caller
// must hold its previously displayed value rather than fabricate one.
func (d SessionDescriptor) Remaining(now time.Time) (remaining int64, ok bool) {
	if d.StartedAt == nil {
		return 0, false
	}
	elapsed := now.Unix() - d.StartedAt.Unix()
	remaining = d.TotalSeconds - (elapsed - d.PausedSeconds)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
