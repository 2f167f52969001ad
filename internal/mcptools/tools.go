// Package mcptools exposes the tutor session and learner progress as MCP tools.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/history"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
)

type Progress interface {
	Dashboard() progress.Dashboard
	Vocabulary(f progress.VocabFilter) []catalog.Word
	LearnWord(ctx context.Context, id string) (catalog.Word, bool, error)
}

type Session interface {
	Send(ctx context.Context, text string) (history.Turn, error)
	End(ctx context.Context) (session.Summary, error)
	Snapshot() session.View
}

type PracticeSendParams struct {
	Text string `json:"text" mcp:"the learner's English sentence"`
}

type EmptyParams struct{}

type VocabularyParams struct {
	Category   string `json:"category,omitempty" mcp:"Conversational or Corporate"`
	Difficulty string `json:"difficulty,omitempty" mcp:"Beginner, Intermediate or Advanced"`
	Query      string `json:"query,omitempty" mcp:"search word, meaning and example"`
}

type LearnWordParams struct {
	WordID string `json:"word_id" mcp:"vocabulary word id, e.g. v1"`
}

type Tools struct {
	progress Progress
	session  Session
}

func New(p Progress, s Session) *Tools {
	return &Tools{progress: p, session: s}
}

// Register adds every tool to server.
func Register(server *mcp.Server, p Progress, s Session) *Tools {
	t := New(p, s)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "practice_send",
		Description: "Sends one learner message to the English tutor and returns the reply with its correction",
	}, t.PracticeSend)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "practice_end",
		Description: "Ends the current practice session, credits practice time and returns the summary",
	}, t.PracticeEnd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "practice_transcript",
		Description: "Returns the transcript of the current practice session",
	}, t.PracticeTranscript)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Returns learner stats and today's task checklist",
	}, t.Dashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "vocabulary",
		Description: "Lists vocabulary words, optionally filtered",
	}, t.Vocabulary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "learn_word",
		Description: "Marks a vocabulary word as learned",
	}, t.LearnWord)

	return t
}

func errorResult(format string, args ...any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: "❌ " + fmt.Sprintf(format, args...)},
		},
	}
}

func textResult(text string, meta map[string]interface{}) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		Meta: meta,
	}
}

func (t *Tools) PracticeSend(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[PracticeSendParams]) (*mcp.CallToolResultFor[any], error) {
	turn, err := t.session.Send(ctx, params.Arguments.Text)
	if err != nil {
		return errorResult("Tutor request failed: %v", err), nil
	}

	var b strings.Builder
	b.WriteString(turn.Content)
	meta := map[string]interface{}{
		"session_id": t.session.Snapshot().SessionID,
		"degraded":   turn.Degraded,
	}
	if c := turn.Correction; c != nil {
		fmt.Fprintf(&b, "\n\nScore: %d/100\nImproved: %s", c.Score, c.ImprovedText)
		if c.Explanation != "" {
			fmt.Fprintf(&b, "\nWhy: %s", c.Explanation)
		}
		meta["score"] = c.Score
		meta["improved"] = c.ImprovedText
		meta["explanation"] = c.Explanation
	}
	return textResult(b.String(), meta), nil
}

func (t *Tools) PracticeEnd(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	sum, err := t.session.End(ctx)
	if err != nil {
		return errorResult("Session ended but progress was not saved: %v", err), nil
	}
	text := fmt.Sprintf("Session complete: %d turns, %d corrections", sum.Turns, sum.Corrections)
	if sum.AverageScore > 0 {
		text += fmt.Sprintf(", average score %.0f", sum.AverageScore)
	}
	return textResult(text, map[string]interface{}{
		"summary":   sum,
		"dashboard": t.progress.Dashboard(),
	}), nil
}

func (t *Tools) PracticeTranscript(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	view := t.session.Snapshot()
	if len(view.Turns) == 0 {
		return textResult("No messages yet.", map[string]interface{}{"session": view}), nil
	}
	var b strings.Builder
	for _, turn := range view.Turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return textResult(b.String(), map[string]interface{}{"session": view}), nil
}

func (t *Tools) Dashboard(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	d := t.progress.Dashboard()
	var b strings.Builder
	fmt.Fprintf(&b, "Streak: %d days\nWords learned: %d\nPractice: %d min\nTests passed: %d\nAccuracy: %d%%\n",
		d.Stats.Streak, d.Stats.WordsLearned, d.Stats.PracticeMinutes, d.Stats.TestsPassed, d.Stats.Accuracy)
	fmt.Fprintf(&b, "Today's tasks: %d/%d (%d%%)\n", d.Completed, d.Total, d.Percent)
	for _, task := range d.Tasks {
		mark := "[ ]"
		if task.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, task.Title)
	}
	return textResult(b.String(), map[string]interface{}{"dashboard": d}), nil
}

func (t *Tools) Vocabulary(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[VocabularyParams]) (*mcp.CallToolResultFor[any], error) {
	words := t.progress.Vocabulary(progress.VocabFilter{
		Category:   catalog.Category(params.Arguments.Category),
		Difficulty: catalog.Difficulty(params.Arguments.Difficulty),
		Query:      params.Arguments.Query,
	})
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%s %s: %s\n", w.ID, w.Word, w.MeaningEn)
	}
	if len(words) == 0 {
		b.WriteString("No words match.")
	}
	return textResult(b.String(), map[string]interface{}{"words": words, "total_found": len(words)}), nil
}

func (t *Tools) LearnWord(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[LearnWordParams]) (*mcp.CallToolResultFor[any], error) {
	w, newly, err := t.progress.LearnWord(ctx, params.Arguments.WordID)
	if err != nil {
		return errorResult("Could not learn %q: %v", params.Arguments.WordID, err), nil
	}
	text := fmt.Sprintf("%s is already learned.", w.Word)
	if newly {
		text = fmt.Sprintf("Learned %s!", w.Word)
	}
	return textResult(text, map[string]interface{}{"word": w, "newly_learned": newly}), nil
}
