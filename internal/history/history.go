package history

import (
	"strings"
	"sync"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleTutor Role = "tutor"
)

// Correction is tutor feedback on the learner's previous sentence.
// Score rates the learner's sentence, not the reply.
type Correction struct {
	ImprovedText string `json:"improved_text"`
	Explanation  string `json:"explanation"`
	Score        int    `json:"score"`
}

type Turn struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Correction *Correction `json:"correction,omitempty"`
	Degraded   bool        `json:"degraded,omitempty"` // tutor apology fallback
	At         time.Time   `json:"at"`
}

// Entry is the role+content view of a turn sent back to the tutor as context.
type Entry struct {
	Role    Role
	Content string
}

func NewUserTurn(content string, at time.Time) Turn {
	return Turn{Role: RoleUser, Content: strings.TrimSpace(content), At: at}
}

// NewTutorTurn attaches a correction only when an improved sentence was offered.
func NewTutorTurn(reply, improved, explanation string, score int, at time.Time) Turn {
	t := Turn{Role: RoleTutor, Content: reply, At: at}
	if improved != "" {
		t.Correction = &Correction{ImprovedText: improved, Explanation: explanation, Score: score}
	}
	return t
}

func (t Turn) clone() Turn {
	if t.Correction != nil {
		c := *t.Correction
		t.Correction = &c
	}
	return t
}

// Transcript is an append-only, ordered list of turns.
type Transcript struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn.clone())
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Turns returns a copy; callers cannot mutate committed turns.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, 0, len(t.turns))
	for _, turn := range t.turns {
		out = append(out, turn.clone())
	}
	return out
}

// Projection strips corrections; they are never replayed to the tutor.
func (t *Transcript) Projection() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, len(t.turns))
	for _, turn := range t.turns {
		out = append(out, Entry{Role: turn.Role, Content: turn.Content})
	}
	return out
}

// Last returns the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1].clone(), true
}
