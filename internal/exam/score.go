package exam

import (
	"encoding/json"
	"strconv"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// Points awarded per question type.
const (
	SinglePoints = 1
	InputPoints  = 2
)

// ScoreResult is the graded outcome of one question.
type ScoreResult struct {
	EarnedPoints int
	IsCorrect    bool
}

// Score grades one question against a raw user answer. It is a pure function:
// no I/O, no logging, no state.
//
// A missing or JSON-null answer scores zero without inspecting the canonical
// answer shape. Unknown question types score zero and are never an error —
// grading must complete for every answered question even when one type is
// malformed; the caller decides whether to log.
func Score(q model.Question, userAnswer json.RawMessage) ScoreResult {
	if isAbsent(userAnswer) {
		return ScoreResult{}
	}

	switch q.Type {
	case model.QuestionTypeSingle:
		if scalarEqual(q.Answer, userAnswer) {
			return ScoreResult{EarnedPoints: SinglePoints, IsCorrect: true}
		}
		return ScoreResult{}

	case model.QuestionTypeInput:
		// Exact equality — no trimming, no case folding.
		if scalarEqual(q.Answer, userAnswer) {
			return ScoreResult{EarnedPoints: InputPoints, IsCorrect: true}
		}
		return ScoreResult{}

	case model.QuestionTypeMatching:
		earned := matchingPoints(q.Answer, userAnswer)
		// Any partial credit counts as "correct" for display purposes.
		return ScoreResult{EarnedPoints: earned, IsCorrect: earned > 0}

	default:
		return ScoreResult{}
	}
}

// matchingPoints awards one point per canonical pair the user reproduced. The
// canonical answer keys right-hand items from 1, while the user's submission
// slots are zero-based, so canonical key k is checked against user slot k-1.
// This offset is a wire-format convention shared with the clients and must
// not be "fixed".
func matchingPoints(canonical, user json.RawMessage) int {
	var want map[string]string
	if err := json.Unmarshal(canonical, &want); err != nil {
		return 0
	}
	var got map[string]string
	if err := json.Unmarshal(user, &got); err != nil {
		return 0
	}

	points := 0
	for key, value := range want {
		k, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if slot, present := got[strconv.Itoa(k-1)]; present && slot == value {
			points++
		}
	}
	return points
}

// isAbsent reports whether a raw answer is missing or JSON null.
func isAbsent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v == nil
}

// scalarEqual compares two raw JSON values as scalars. Objects and arrays
// never compare equal to anything — the single/input types only carry scalar
// answers.
func scalarEqual(a, b json.RawMessage) bool {
	av, aok := decodeScalar(a)
	bv, bok := decodeScalar(b)
	return aok && bok && av == bv
}

func decodeScalar(raw json.RawMessage) (any, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case string, float64, bool:
		return v, true
	}
	return nil, false
}
