package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when the key was never written.
var ErrNotFound = errors.New("storage: key not found")

// Store keeps opaque JSON blobs under fixed keys.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type EventKind string

const (
	KindChatSession EventKind = "chat_session"
	KindWordLearned EventKind = "word_learned"
	KindTaskStarted EventKind = "task_started"
	KindDayRollover EventKind = "day_rollover"
)

// Event is one activity record. It carries counts and identifiers only,
// never what the learner or the tutor said.
type Event struct {
	Timestamp       time.Time `json:"timestamp"`
	Kind            EventKind `json:"kind"`
	SessionID       string    `json:"session_id,omitempty"`
	TaskID          string    `json:"task_id,omitempty"`
	WordID          string    `json:"word_id,omitempty"`
	Turns           int       `json:"turns,omitempty"`
	Corrections     int       `json:"corrections,omitempty"`
	AverageScore    float64   `json:"average_score,omitempty"`
	PracticeMinutes int       `json:"practice_minutes,omitempty"`
}

// Recorder abstracts persistence of activity events.
// LoadEvents returns events in the order they were appended.
type Recorder interface {
	AppendEvent(event Event) error
	LoadEvents() ([]Event, error)
}
