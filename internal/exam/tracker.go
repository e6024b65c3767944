package exam

import (
	"encoding/json"
	"sync"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// AnswerSet is a per-subject, per-question-index snapshot of raw answers.
type AnswerSet map[model.Subject]map[int]json.RawMessage

// AnswerTracker holds one participant's in-progress answers for the lifetime
// of a connection. Recording is a zero-cost, always-succeeding overwrite with
// no shape validation — validation happens once, in the scoring engine, at
// submission time. After a successful submission the tracker goes inert:
// further records are accepted but change nothing, since no second submission
// will ever consume them.
type AnswerTracker struct {
	mu        sync.Mutex
	answers   AnswerSet
	submitted bool
}

// NewAnswerTracker returns an empty tracker.
func NewAnswerTracker() *AnswerTracker {
	return &AnswerTracker{answers: make(AnswerSet)}
}

// Record stores the answer for one slot, overwriting any prior value.
func (t *AnswerTracker) Record(subject model.Subject, index int, raw json.RawMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.submitted {
		return
	}
	slots, ok := t.answers[subject]
	if !ok {
		slots = make(map[int]json.RawMessage)
		t.answers[subject] = slots
	}
	slots[index] = raw
}

// Current returns the stored answer for one slot. ok is false for the
// unanswered sentinel; Current never fails.
func (t *AnswerTracker) Current(subject model.Subject, index int) (json.RawMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	raw, ok := t.answers[subject][index]
	return raw, ok
}

// Snapshot returns a deep copy of the current answers, safe to grade while
// the tracker keeps receiving writes.
func (t *AnswerTracker) Snapshot() AnswerSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(AnswerSet, len(t.answers))
	for subject, slots := range t.answers {
		cp := make(map[int]json.RawMessage, len(slots))
		for idx, raw := range slots {
			cp[idx] = raw
		}
		out[subject] = cp
	}
	return out
}

// Seed loads recovered answers into the tracker, keeping any value already
// recorded on this connection.
func (t *AnswerTracker) Seed(set AnswerSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.submitted {
		return
	}
	for subject, slots := range set {
		dst, ok := t.answers[subject]
		if !ok {
			dst = make(map[int]json.RawMessage, len(slots))
			t.answers[subject] = dst
		}
		for idx, raw := range slots {
			if _, taken := dst[idx]; !taken {
				dst[idx] = raw
			}
		}
	}
}

// MarkSubmitted makes the tracker inert.
func (t *AnswerTracker) MarkSubmitted() {
	t.mu.Lock()
	t.submitted = true
	t.mu.Unlock()
}

// Submitted reports whether a submission already consumed this tracker.
func (t *AnswerTracker) Submitted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.submitted
}
