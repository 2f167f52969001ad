package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"lovable-tutor/internal/history"
	"lovable-tutor/internal/llm"
	"lovable-tutor/internal/metrics"
)

// ApologyReply is the tutor text used when the model could not be reached
// or answered with something unusable.
const ApologyReply = "I'm sorry, I'm having trouble processing that right now. Could you say it again?"

const (
	DefaultTimeout = 30 * time.Second
	degradedScore  = 100
)

// Result is one normalized tutor answer.
// Improved is empty when the tutor found nothing to correct.
type Result struct {
	Reply       string `json:"reply"`
	Score       int    `json:"score"`
	Improved    string `json:"improved,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	// Degraded marks the apology fallback so callers can tell it apart from a real reply.
	Degraded bool `json:"degraded,omitempty"`
}

type Options struct {
	SystemPrompt string
	Timeout      time.Duration
	// SurfaceErrors returns *Error instead of the apology fallback.
	SurfaceErrors bool
}

// Client turns (history, message) into one Result. It keeps no state between calls.
type Client struct {
	llm  llm.Client
	opts Options
}

func New(c llm.Client, opts Options) *Client {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{llm: c, opts: opts}
}

// RequestTurn sends the running conversation plus message to the model.
// history must not contain message itself.
func (c *Client) RequestTurn(ctx context.Context, hist []history.Entry, message string) (Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Result{}, ErrEmptyMessage
	}

	started := time.Now()
	res, err := c.request(ctx, hist, message)
	metrics.TutorDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		metrics.TutorRequests.WithLabelValues(metrics.OutcomeOK).Inc()
		return res, nil
	}

	if c.opts.SurfaceErrors {
		metrics.TutorRequests.WithLabelValues(metrics.OutcomeError).Inc()
		log.Printf("❌ tutor request failed: %v", err)
		return Result{}, err
	}
	metrics.TutorRequests.WithLabelValues(metrics.OutcomeDegraded).Inc()
	log.Printf("⚠️ tutor request degraded to apology: %v", err)
	return Result{Reply: ApologyReply, Score: degradedScore, Degraded: true}, nil
}

func (c *Client) request(ctx context.Context, hist []history.Entry, message string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	msgs := c.buildMessages(hist, message)

	var (
		resp llm.Response
		err  error
	)
	if sc, ok := c.llm.(llm.StructuredClient); ok {
		resp, err = sc.GenerateStructured(ctx, msgs, responseFormat)
	} else {
		resp, err = c.llm.Generate(ctx, msgs)
	}
	if err != nil {
		return Result{}, &Error{Kind: KindTransport, Err: err}
	}
	log.Printf("LLM response [model=%s, tokens: prompt=%d, completion=%d, total=%d]", resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)

	res, err := parseResult(resp.Content)
	if err != nil {
		return Result{}, &Error{Kind: KindFormat, Err: err}
	}
	return res, nil
}

func (c *Client) buildMessages(hist []history.Entry, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(hist)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: c.opts.SystemPrompt})
	for _, h := range hist {
		role := llm.RoleUser
		if h.Role == history.RoleTutor {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}

type wireResult struct {
	Reply       string   `json:"reply"`
	Score       *float64 `json:"score"`
	Improved    string   `json:"improved"`
	Explanation string   `json:"explanation"`
}

func parseResult(raw string) (Result, error) {
	var w wireResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &w); err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}
	if strings.TrimSpace(w.Reply) == "" {
		return Result{}, errors.New("missing reply")
	}
	if w.Score == nil || math.IsNaN(*w.Score) || math.IsInf(*w.Score, 0) {
		return Result{}, errors.New("missing score")
	}
	return Result{
		Reply:       strings.TrimSpace(w.Reply),
		Score:       clampScore(*w.Score),
		Improved:    strings.TrimSpace(w.Improved),
		Explanation: strings.TrimSpace(w.Explanation),
	}, nil
}

// clampScore clamps in float space; converting a huge float to int first
// is implementation-defined.
func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// extractJSON drops Markdown fences and any chatter around the object.
func extractJSON(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)
	if start, end := strings.Index(t, "{"), strings.LastIndex(t, "}"); start >= 0 && end > start {
		t = t[start : end+1]
	}
	return t
}
