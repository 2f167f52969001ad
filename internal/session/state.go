package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovable-tutor/internal/history"
	"lovable-tutor/internal/tutor"
)

var (
	ErrEmptyMessage = errors.New("session: message is empty")
	ErrBusy         = errors.New("session: a tutor reply is still pending")
	ErrSessionEnded = errors.New("session: ended before the tutor replied")
)

type State int

const (
	Idle State = iota
	AwaitingReply
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "awaiting_reply":
		*s = AwaitingReply
	case "errored":
		*s = Errored
	default:
		return fmt.Errorf("unknown session state %q", b)
	}
	return nil
}

// Tutor is the capability the controller drives; *tutor.Client implements it.
type Tutor interface {
	RequestTurn(ctx context.Context, hist []history.Entry, message string) (tutor.Result, error)
}

// CompletionSink receives "one chat session completed" exactly once per End call.
type CompletionSink interface {
	ChatSessionCompleted(ctx context.Context, s Summary) error
}

type CompletionFunc func(ctx context.Context, s Summary) error

func (f CompletionFunc) ChatSessionCompleted(ctx context.Context, s Summary) error {
	return f(ctx, s)
}

// Summary describes an ended session. It carries counts only, never transcript text.
type Summary struct {
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	Turns        int       `json:"turns"`
	Corrections  int       `json:"corrections"`
	AverageScore float64   `json:"average_score"`
	Degraded     int       `json:"degraded"`
}

type EventKind string

const (
	EventTurnAppended EventKind = "turn_appended"
	EventStateChanged EventKind = "state_changed"
	EventSessionEnded EventKind = "session_ended"
)

// Event.Seq increases by one per event. A View with Seq n already
// reflects every event with Seq <= n.
type Event struct {
	Seq       uint64        `json:"seq"`
	Kind      EventKind     `json:"kind"`
	SessionID string        `json:"session_id"`
	State     State         `json:"state"`
	Turn      *history.Turn `json:"turn,omitempty"`
	Summary   *Summary      `json:"summary,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// View is a read-only snapshot for renderers.
type View struct {
	Seq       uint64         `json:"seq"`
	SessionID string         `json:"session_id"`
	State     State          `json:"state"`
	StartedAt time.Time      `json:"started_at"`
	Turns     []history.Turn `json:"turns"`
	LastError string         `json:"last_error,omitempty"`
}
