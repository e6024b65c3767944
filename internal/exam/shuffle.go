package exam

import (
	"math/rand/v2"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// ShuffleOptions randomizes the displayed option order of single-choice
// questions. Every call is an independent, unseeded shuffle — two paper loads
// must not share an order. Only the display order moves: the canonical answer
// is stored elsewhere and scoring is unaffected. Input and matching questions
// pass through untouched.
func ShuffleOptions(questions []model.QuestionForParticipant) []model.QuestionForParticipant {
	out := make([]model.QuestionForParticipant, len(questions))
	for i, q := range questions {
		if q.Type == model.QuestionTypeSingle && len(q.Options) > 1 {
			shuffled := make([]string, len(q.Options))
			copy(shuffled, q.Options)
			rand.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			q.Options = shuffled
		}
		out[i] = q
	}
	return out
}
