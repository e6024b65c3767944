package exam

import (
	"encoding/json"
	"testing"

	"github.com/boiko-school/nmt-backend/internal/model"
)

func singleQuestion(answer string) model.Question {
	return model.Question{
		ID:      1,
		Subject: model.SubjectHistory,
		Type:    model.QuestionTypeSingle,
		Options: []string{"a", "b", "c", "d"},
		Answer:  mustJSON(answer),
	}
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func TestScoreSingle(t *testing.T) {
	tests := []struct {
		name    string
		answer  json.RawMessage
		points  int
		correct bool
	}{
		{"exact match", mustJSON("b"), 1, true},
		{"wrong option", mustJSON("c"), 0, false},
		{"case sensitive", mustJSON("B"), 0, false},
		{"unanswered nil", nil, 0, false},
		{"unanswered null", json.RawMessage("null"), 0, false},
		{"object never matches a scalar", mustJSON(map[string]string{"0": "b"}), 0, false},
	}

	q := singleQuestion("b")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.answer)
			if got.EarnedPoints != tc.points || got.IsCorrect != tc.correct {
				t.Errorf("Score() = (%d, %v), want (%d, %v)",
					got.EarnedPoints, got.IsCorrect, tc.points, tc.correct)
			}
		})
	}
}

func TestScoreInput(t *testing.T) {
	q := model.Question{
		ID:      7,
		Subject: model.SubjectEng,
		Type:    model.QuestionTypeInput,
		Answer:  mustJSON("1848"),
	}

	tests := []struct {
		name    string
		answer  json.RawMessage
		points  int
		correct bool
	}{
		{"exact match earns two", mustJSON("1848"), 2, true},
		{"whitespace is significant", mustJSON("1848 "), 0, false},
		{"number does not equal string", mustJSON(1848), 0, false},
		{"unanswered", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.answer)
			if got.EarnedPoints != tc.points || got.IsCorrect != tc.correct {
				t.Errorf("Score() = (%d, %v), want (%d, %v)",
					got.EarnedPoints, got.IsCorrect, tc.points, tc.correct)
			}
		})
	}
}

func TestScoreNumericScalars(t *testing.T) {
	q := model.Question{Type: model.QuestionTypeInput, Answer: mustJSON(42)}
	if got := Score(q, mustJSON(42)); got.EarnedPoints != 2 || !got.IsCorrect {
		t.Errorf("numeric input answer: Score() = %+v, want full points", got)
	}
}

func TestScoreMatching(t *testing.T) {
	q := model.Question{
		ID:      3,
		Subject: model.SubjectHistory,
		Type:    model.QuestionTypeMatching,
		Answer:  mustJSON(map[string]string{"1": "a", "2": "b"}),
	}

	tests := []struct {
		name    string
		answer  json.RawMessage
		points  int
		correct bool
	}{
		// User slots are zero-based; canonical keys start at 1.
		{"all pairs", mustJSON(map[string]string{"0": "a", "1": "b"}), 2, true},
		{"one pair", mustJSON(map[string]string{"0": "a", "1": "x"}), 1, true},
		{"no pairs", mustJSON(map[string]string{"0": "x", "1": "y"}), 0, false},
		{"slots without the offset earn nothing", mustJSON(map[string]string{"1": "a", "2": "b"}), 0, false},
		{"partial submission", mustJSON(map[string]string{"1": "b"}), 1, true},
		{"scalar answer to matching", mustJSON("a"), 0, false},
		{"unanswered", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.answer)
			if got.EarnedPoints != tc.points || got.IsCorrect != tc.correct {
				t.Errorf("Score() = (%d, %v), want (%d, %v)",
					got.EarnedPoints, got.IsCorrect, tc.points, tc.correct)
			}
		})
	}
}

func TestScoreMatchingAdditiveAndOrderIndependent(t *testing.T) {
	q := model.Question{
		Type:   model.QuestionTypeMatching,
		Answer: mustJSON(map[string]string{"1": "a", "2": "b", "3": "c"}),
	}

	full := Score(q, mustJSON(map[string]string{"0": "a", "1": "b", "2": "c"}))
	if full.EarnedPoints != 3 {
		t.Fatalf("full match = %d points, want 3", full.EarnedPoints)
	}

	// Points are per-key: each correct pair contributes exactly one,
	// independent of which other pairs are right.
	perKey := []json.RawMessage{
		mustJSON(map[string]string{"0": "a"}),
		mustJSON(map[string]string{"1": "b"}),
		mustJSON(map[string]string{"2": "c"}),
	}
	sum := 0
	for _, ans := range perKey {
		sum += Score(q, ans).EarnedPoints
	}
	if sum != full.EarnedPoints {
		t.Errorf("per-key sum = %d, full = %d; matching must be additive", sum, full.EarnedPoints)
	}
}

func TestScoreCanonicalAnswerEarnsFullPoints(t *testing.T) {
	// The canonical answer itself must always grade as fully correct.
	qs := []model.Question{
		singleQuestion("c"),
		{Type: model.QuestionTypeInput, Answer: mustJSON("Хмельницький")},
	}
	want := []int{SinglePoints, InputPoints}

	for i, q := range qs {
		got := Score(q, q.Answer)
		if got.EarnedPoints != want[i] || !got.IsCorrect {
			t.Errorf("q[%d]: Score(q, q.Answer) = %+v, want %d points, correct", i, got, want[i])
		}
	}
}

func TestScoreUnknownType(t *testing.T) {
	q := model.Question{Type: "essay", Answer: mustJSON("anything")}
	got := Score(q, mustJSON("anything"))
	if got.EarnedPoints != 0 || got.IsCorrect {
		t.Errorf("unknown type: Score() = %+v, want zero and not correct", got)
	}
}
