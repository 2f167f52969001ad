package cli

import (
	"fmt"
	"strings"

	"lovable-tutor/internal/history"
	"lovable-tutor/internal/session"
)

func formatTurn(t history.Turn) string {
	var b strings.Builder
	b.WriteString("🤖 ")
	b.WriteString(t.Content)
	if c := t.Correction; c != nil {
		fmt.Fprintf(&b, "\n   📝 Score: %d/100", c.Score)
		fmt.Fprintf(&b, "\n   ✅ %s", c.ImprovedText)
		if c.Explanation != "" {
			fmt.Fprintf(&b, "\n   💡 %s", c.Explanation)
		}
	}
	return b.String()
}

func formatSummary(s session.Summary) string {
	if s.Turns == 0 {
		return "Session ended. No messages this time."
	}
	out := fmt.Sprintf("🏁 Session complete: %d turns, %d corrections", s.Turns, s.Corrections)
	if s.AverageScore > 0 {
		out += fmt.Sprintf(", average score %.0f", s.AverageScore)
	}
	return out
}
