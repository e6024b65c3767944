package model

import (
	"encoding/json"
	"time"
)

// ResultEntry is the graded outcome of one answered question. Unanswered
// questions produce no entry at all.
type ResultEntry struct {
	Subject       Subject         `json:"subject"`
	QuestionID    int             `json:"question_id"`
	QuestionType  QuestionType    `json:"question_type"`
	UserAnswer    json.RawMessage `json:"user_answer"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	EarnedPoints  int             `json:"earned_points"`
	IsCorrect     bool            `json:"is_correct"`
}

// Submission is the immutable, per-participant outcome of one completed exam
// attempt. SubmittedAt is always server-assigned.
type Submission struct {
	ID            int             `json:"id"`
	ParticipantID int             `json:"participant_id"`
	Email         string          `json:"email"`
	Results       []ResultEntry   `json:"results"`
	Score         map[Subject]int `json:"score"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	AutoSubmitted bool            `json:"auto_submitted"`
}
