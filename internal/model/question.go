package model

import "encoding/json"

// Subject enumerates the fixed exam subjects.
type Subject string

const (
	SubjectHistory Subject = "history"
	SubjectEng     Subject = "eng"
)

// Subjects is the fixed subject set, in grading order.
var Subjects = []Subject{SubjectHistory, SubjectEng}

// ValidSubject reports whether s names a known subject.
func ValidSubject(s Subject) bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	// QuestionTypeSingle is one choice out of an option list. Worth 1 point.
	QuestionTypeSingle QuestionType = "single"
	// QuestionTypeInput is a free-text answer compared for exact equality. Worth 2 points.
	QuestionTypeInput QuestionType = "input"
	// QuestionTypeMatching pairs right-hand items to left-hand options, 1 point per pair.
	QuestionTypeMatching QuestionType = "matching"
)

// Question is a single exam question. IDs are unique within a subject.
// Answer holds the canonical answer in a type-dependent shape:
//   - single:   JSON string equal to one of Options
//   - input:    JSON string compared verbatim
//   - matching: JSON object mapping 1-based right-item keys to left-item values
type Question struct {
	ID      int             `json:"id"`
	Subject Subject         `json:"subject"`
	Type    QuestionType    `json:"type"`
	Prompt  string          `json:"prompt"`
	Options []string        `json:"options,omitempty"`
	Answer  json.RawMessage `json:"answer"`
}

// QuestionForParticipant is the answer-stripped view served as the exam paper.
type QuestionForParticipant struct {
	ID      int          `json:"id"`
	Subject Subject      `json:"subject"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
}

// StripAnswer converts a Question into its participant-facing view.
func (q Question) StripAnswer() QuestionForParticipant {
	return QuestionForParticipant{
		ID:      q.ID,
		Subject: q.Subject,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Options: q.Options,
	}
}
