package websocket

import (
	"encoding/json"

	"github.com/boiko-school/nmt-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to record a single answer slot.
// Index is the 1-based question number shown to the participant.
type AnswerRequest struct {
	Action  Action          `json:"action"`
	Subject model.Subject   `json:"subject"`
	Index   int             `json:"index"`
	Answer  json.RawMessage `json:"answer"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSession Event = "session"
	EventTick    Event = "tick"
	EventExpired Event = "expired"
	EventSaved   Event = "saved"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// SessionEvent carries the session status whenever it changes.
type SessionEvent struct {
	Event  Event               `json:"event"`
	Status model.SessionStatus `json:"status"`
}

// TickEvent carries the remaining whole seconds, sent once per second
// while the session is running.
type TickEvent struct {
	Event     Event `json:"event"`
	Remaining int64 `json:"remaining"`
}

// ExpiredEvent signals that the countdown reached zero. The server
// auto-submits shortly after sending it.
type ExpiredEvent struct {
	Event Event `json:"event"`
}

// SavedEvent acknowledges a recorded answer slot.
type SavedEvent struct {
	Event   Event         `json:"event"`
	Subject model.Subject `json:"subject"`
	Index   int           `json:"index"`
}

// GradedEvent carries the per-subject scores after submission.
type GradedEvent struct {
	Event         Event                 `json:"event"`
	Score         map[model.Subject]int `json:"score"`
	AutoSubmitted bool                  `json:"auto_submitted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
