package session

import (
	"sync"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// State is a client-side cache of the latest session descriptor snapshot
// observed on the control channel. Every delivery is a full-state replace;
// the cache starts in loading until the first snapshot arrives.
type State struct {
	mu   sync.RWMutex
	desc model.SessionDescriptor
}

// NewState returns a State in the initial loading phase.
func NewState() *State {
	return &State{desc: model.SessionDescriptor{Status: model.SessionLoading}}
}

// Apply replaces the cached descriptor with a new snapshot.
func (s *State) Apply(d model.SessionDescriptor) {
	s.mu.Lock()
	s.desc = d
	s.mu.Unlock()
}

// ApplyAbsent records that the control channel delivered no descriptor at all,
// which is treated as stopped.
func (s *State) ApplyAbsent() {
	s.Apply(model.SessionDescriptor{Status: model.SessionStopped})
}

// Current returns the cached descriptor snapshot.
func (s *State) Current() model.SessionDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desc
}

// InteractionAllowed reports whether answer recording is currently permitted.
// Everything but started keeps the answering surface disabled.
func (s *State) InteractionAllowed() bool {
	return s.Current().Status == model.SessionStarted
}

// StartAllowed reports whether a start action may run against the
// descriptor. The start instant is written exactly once: a paused
// session continues through resume, never through another start.
func StartAllowed(d model.SessionDescriptor) bool {
	return CanTransition(d.Status, model.SessionStarted) && d.StartedAt == nil
}

// CanTransition reports whether the control surface may move the session from
// one status to another: loading → {started, stopped}; started ↔ paused;
// anything → stopped. Stopped is terminal.
func CanTransition(from, to model.SessionStatus) bool {
	if to == model.SessionStopped {
		return from != model.SessionStopped
	}
	switch from {
	case model.SessionLoading:
		return to == model.SessionStarted
	case model.SessionStarted:
		return to == model.SessionPaused
	case model.SessionPaused:
		return to == model.SessionStarted
	default:
		return false
	}
}
