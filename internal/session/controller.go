package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lovable-tutor/internal/history"
	"lovable-tutor/internal/metrics"
)

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

type observer struct {
	id int
	fn func(Event)
}

// pending tracks one in-flight tutor request.
type pending struct {
	gen  uint64
	done chan struct{}
	turn history.Turn
	err  error
}

// Controller owns the transcript of the single active practice session.
//
// At most one tutor request is in flight: Submit is rejected while the
// state is AwaitingReply. End retires the current session and starts a
// fresh one; results that belong to a retired session are dropped.
type Controller struct {
	tutor Tutor
	sink  CompletionSink
	now   func() time.Time
	newID func() string

	// dispatchMu orders commit+notify pairs so observers see events in commit order.
	dispatchMu sync.Mutex

	mu         sync.Mutex
	sessionID  string
	startedAt  time.Time
	gen        uint64
	seq        uint64
	state      State
	transcript *history.Transcript
	scores     []int
	degraded   int
	lastErr    error

	obsMu     sync.Mutex
	observers []observer
	nextObs   int
}

func New(t Tutor, sink CompletionSink, opts ...Option) *Controller {
	c := &Controller{
		tutor: t,
		sink:  sink,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.sessionID = c.newID()
	c.startedAt = c.now()
	c.state = Idle
	c.transcript = history.NewTranscript()
	c.scores = nil
	c.degraded = 0
	c.lastErr = nil
}

// Submit commits the learner's turn and requests the tutor reply in the
// background. The returned channel is closed once the reply has been
// applied or discarded. The request does not inherit ctx cancellation.
func (c *Controller) Submit(ctx context.Context, text string) (<-chan struct{}, error) {
	p, err := c.submit(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.done, nil
}

// Send is the blocking form of Submit. It returns the tutor turn.
func (c *Controller) Send(ctx context.Context, text string) (history.Turn, error) {
	p, err := c.submit(ctx, text)
	if err != nil {
		return history.Turn{}, err
	}
	select {
	case <-p.done:
	case <-ctx.Done():
		return history.Turn{}, ctx.Err()
	}
	return p.turn, p.err
}

func (c *Controller) submit(ctx context.Context, text string) (*pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.dispatchMu.Lock()
	c.mu.Lock()
	if c.state == AwaitingReply {
		c.mu.Unlock()
		c.dispatchMu.Unlock()
		return nil, ErrBusy
	}
	// Context for the tutor is taken before the new turn is appended.
	hist := c.transcript.Projection()
	turn := history.NewUserTurn(text, c.now())
	c.transcript.Append(turn)
	c.state = AwaitingReply
	c.lastErr = nil
	p := &pending{gen: c.gen, done: make(chan struct{})}
	sid := c.sessionID
	seq := c.nextSeqLocked(2)
	c.mu.Unlock()

	metrics.SessionTurns.WithLabelValues(string(history.RoleUser)).Inc()
	c.notify(
		Event{Seq: seq, Kind: EventTurnAppended, SessionID: sid, State: AwaitingReply, Turn: &turn},
		Event{Seq: seq + 1, Kind: EventStateChanged, SessionID: sid, State: AwaitingReply},
	)
	c.dispatchMu.Unlock()

	go c.await(context.WithoutCancel(ctx), p, hist, text)
	return p, nil
}

func (c *Controller) await(ctx context.Context, p *pending, hist []history.Entry, text string) {
	defer close(p.done)

	res, err := c.tutor.RequestTurn(ctx, hist, text)

	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if p.gen != c.gen {
		c.mu.Unlock()
		p.err = ErrSessionEnded
		metrics.StaleResults.Inc()
		log.Printf("🗑️ Dropping tutor reply for an ended session")
		return
	}
	sid := c.sessionID
	if err != nil {
		c.state = Errored
		c.lastErr = err
		seq := c.nextSeqLocked(1)
		c.mu.Unlock()
		p.err = err
		c.notify(Event{Seq: seq, Kind: EventStateChanged, SessionID: sid, State: Errored, Error: err.Error()})
		return
	}

	turn := history.NewTutorTurn(res.Reply, res.Improved, res.Explanation, res.Score, c.now())
	turn.Degraded = res.Degraded
	c.transcript.Append(turn)
	if res.Degraded {
		c.degraded++
	} else {
		c.scores = append(c.scores, res.Score)
	}
	c.state = Idle
	seq := c.nextSeqLocked(2)
	c.mu.Unlock()

	p.turn = turn
	metrics.SessionTurns.WithLabelValues(string(history.RoleTutor)).Inc()
	c.notify(
		Event{Seq: seq, Kind: EventTurnAppended, SessionID: sid, State: Idle, Turn: &turn},
		Event{Seq: seq + 1, Kind: EventStateChanged, SessionID: sid, State: Idle},
	)
}

// End reports one completed chat session, discards the transcript and
// starts a fresh session. It may be called in any state.
func (c *Controller) End(ctx context.Context) (Summary, error) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	sum := c.summaryLocked()
	c.gen++
	c.resetLocked()
	next := c.sessionID
	seq := c.nextSeqLocked(2)
	c.mu.Unlock()

	metrics.SessionsCompleted.Inc()
	log.Printf("🏁 Practice session %s ended: turns=%d corrections=%d avg=%.1f", sum.SessionID, sum.Turns, sum.Corrections, sum.AverageScore)

	var err error
	if c.sink != nil {
		if err = c.sink.ChatSessionCompleted(ctx, sum); err != nil {
			log.Printf("❌ failed to apply session completion: %v", err)
		}
	}

	c.notify(
		Event{Seq: seq, Kind: EventSessionEnded, SessionID: sum.SessionID, State: Idle, Summary: &sum},
		Event{Seq: seq + 1, Kind: EventStateChanged, SessionID: next, State: Idle},
	)
	return sum, err
}

// nextSeqLocked reserves n sequence numbers and returns the first.
func (c *Controller) nextSeqLocked(n uint64) uint64 {
	first := c.seq + 1
	c.seq += n
	return first
}

func (c *Controller) summaryLocked() Summary {
	sum := Summary{
		SessionID: c.sessionID,
		StartedAt: c.startedAt,
		EndedAt:   c.now(),
		Turns:     c.transcript.Len(),
		Degraded:  c.degraded,
	}
	for _, t := range c.transcript.Turns() {
		if t.Correction != nil {
			sum.Corrections++
		}
	}
	if len(c.scores) > 0 {
		total := 0
		for _, s := range c.scores {
			total += s
		}
		sum.AverageScore = float64(total) / float64(len(c.scores))
	}
	return sum
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Transcript() []history.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Seq:       c.seq,
		SessionID: c.sessionID,
		State:     c.state,
		StartedAt: c.startedAt,
		Turns:     c.transcript.Turns(),
	}
	if c.lastErr != nil {
		v.LastError = c.lastErr.Error()
	}
	return v
}

// Subscribe registers fn for session events. fn runs synchronously in
// commit order and must not call Submit, Send or End.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) notify(events ...Event) {
	c.obsMu.Lock()
	obs := append([]observer(nil), c.observers...)
	c.obsMu.Unlock()
	for _, ev := range events {
		for _, o := range obs {
			o.fn(ev)
		}
	}
}
