package exam

import (
	"encoding/json"
	"testing"

	"github.com/boiko-school/nmt-backend/internal/model"
)

func TestTrackerRecordAndCurrent(t *testing.T) {
	tr := NewAnswerTracker()

	if _, ok := tr.Current(model.SubjectHistory, 0); ok {
		t.Fatal("empty tracker must report unanswered")
	}

	tr.Record(model.SubjectHistory, 0, mustJSON("a"))
	tr.Record(model.SubjectEng, 0, mustJSON("x"))

	raw, ok := tr.Current(model.SubjectHistory, 0)
	if !ok || string(raw) != `"a"` {
		t.Errorf("Current() = (%s, %v), want (\"a\", true)", raw, ok)
	}

	// Same index in another subject is an independent slot.
	raw, ok = tr.Current(model.SubjectEng, 0)
	if !ok || string(raw) != `"x"` {
		t.Errorf("Current(eng, 0) = (%s, %v), want (\"x\", true)", raw, ok)
	}
}

func TestTrackerLastWritePerSlotWins(t *testing.T) {
	tr := NewAnswerTracker()
	tr.Record(model.SubjectHistory, 3, mustJSON("first"))
	tr.Record(model.SubjectHistory, 3, mustJSON("second"))

	raw, ok := tr.Current(model.SubjectHistory, 3)
	if !ok || string(raw) != `"second"` {
		t.Errorf("Current() = (%s, %v), want the overwritten value", raw, ok)
	}
}

func TestTrackerAcceptsAnyShape(t *testing.T) {
	// Recording never validates: malformed or mismatched shapes are stored
	// as-is and only the scoring engine judges them.
	tr := NewAnswerTracker()
	tr.Record(model.SubjectEng, 1, json.RawMessage(`{"0":"a","1":"b"}`))
	tr.Record(model.SubjectEng, 2, json.RawMessage(`12`))

	if _, ok := tr.Current(model.SubjectEng, 1); !ok {
		t.Error("object answer not stored")
	}
	if _, ok := tr.Current(model.SubjectEng, 2); !ok {
		t.Error("numeric answer not stored")
	}
}

func TestTrackerSnapshotIsDetached(t *testing.T) {
	tr := NewAnswerTracker()
	tr.Record(model.SubjectHistory, 0, mustJSON("a"))

	snap := tr.Snapshot()
	tr.Record(model.SubjectHistory, 0, mustJSON("changed"))
	tr.Record(model.SubjectHistory, 1, mustJSON("new"))

	if string(snap[model.SubjectHistory][0]) != `"a"` {
		t.Error("snapshot mutated by a later Record")
	}
	if _, ok := snap[model.SubjectHistory][1]; ok {
		t.Error("snapshot grew after being taken")
	}
}

func TestTrackerInertAfterSubmission(t *testing.T) {
	tr := NewAnswerTracker()
	tr.Record(model.SubjectHistory, 0, mustJSON("kept"))
	tr.MarkSubmitted()

	// Accepted, but with no further effect.
	tr.Record(model.SubjectHistory, 0, mustJSON("ignored"))
	tr.Record(model.SubjectHistory, 5, mustJSON("ignored"))

	raw, ok := tr.Current(model.SubjectHistory, 0)
	if !ok || string(raw) != `"kept"` {
		t.Errorf("Current() = (%s, %v), want the pre-submission value", raw, ok)
	}
	if _, ok := tr.Current(model.SubjectHistory, 5); ok {
		t.Error("inert tracker stored a new slot")
	}
	if !tr.Submitted() {
		t.Error("Submitted() = false after MarkSubmitted")
	}
}

func TestTrackerSeedKeepsLocalWrites(t *testing.T) {
	tr := NewAnswerTracker()
	tr.Record(model.SubjectHistory, 0, mustJSON("local"))

	tr.Seed(AnswerSet{
		model.SubjectHistory: {0: mustJSON("recovered"), 1: mustJSON("recovered")},
	})

	raw, _ := tr.Current(model.SubjectHistory, 0)
	if string(raw) != `"local"` {
		t.Error("seed overwrote a live answer")
	}
	raw, ok := tr.Current(model.SubjectHistory, 1)
	if !ok || string(raw) != `"recovered"` {
		t.Error("seed did not fill an empty slot")
	}
}
