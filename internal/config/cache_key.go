package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionDescriptorKey returns the cache key holding the latest session
// descriptor snapshot (JSON), kept alongside the Postgres row so reconnecting
// clients can read it without hitting the database.
func (r *CacheKeyStruct) SessionDescriptorKey() string {
	return "exam:session:descriptor"
}

// SessionChannel returns the Redis Pub/Sub channel carrying descriptor
// snapshots to every connected client.
func (r *CacheKeyStruct) SessionChannel() string {
	return "exam:session:channel"
}

// ParticipantAnswersKey returns the cache key for a participant's answers in
// one subject. The hash field is the question index, the value the raw answer.
func (r *CacheKeyStruct) ParticipantAnswersKey(participantID int, subject string) string {
	return fmt.Sprintf("participant:%d:subject:%s:answers", participantID, subject)
}

// QuestionPayloadKey returns the cache key for a subject's canonical question
// payload (answers included — never served to participants directly).
func (r *CacheKeyStruct) QuestionPayloadKey(subject string) string {
	return fmt.Sprintf("subject:%s:questions", subject)
}

// ParticipantLoginKey returns the cache key for a participant's login session.
func (r *CacheKeyStruct) ParticipantLoginKey(participantID int) string {
	return fmt.Sprintf("login:%d", participantID)
}

var CacheKey = NewCacheKeyStruct()
