package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"lovable-tutor/internal/analytics"
	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/history"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
)

const helpText = `👋 <b>Lovable English Tutor</b>

/chat - start a practice session
/end - finish the session (+practice minutes)
/dashboard - stats and today's tasks
/vocab [Conversational|Corporate] - vocabulary list
/learn &lt;id&gt; - mark a word as learned
/progress - this week's activity`

func escape(s string) string { return html.EscapeString(s) }

func itoa(n int) string { return strconv.Itoa(n) }

// formatTutorTurn renders the reply and, when present, the correction card.
func formatTutorTurn(t history.Turn) string {
	var b strings.Builder
	b.WriteString(escape(t.Content))
	if c := t.Correction; c != nil {
		fmt.Fprintf(&b, "\n\n📝 <b>Score: %d/100</b>\n✅ <i>%s</i>", c.Score, escape(c.ImprovedText))
		if c.Explanation != "" {
			fmt.Fprintf(&b, "\n💡 %s", escape(c.Explanation))
		}
	}
	return b.String()
}

func formatSummary(s session.Summary) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Session complete</b>\n")
	fmt.Fprintf(&b, "Turns: %d, corrections: %d", s.Turns, s.Corrections)
	if s.AverageScore > 0 {
		fmt.Fprintf(&b, ", average score: %.0f/100", s.AverageScore)
	}
	return b.String()
}

func formatDashboard(d progress.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 Streak: <b>%d</b> days\n", d.Stats.Streak)
	fmt.Fprintf(&b, "📚 Words learned: <b>%d</b>\n", d.Stats.WordsLearned)
	fmt.Fprintf(&b, "⏱️ Practice: <b>%d</b> min\n", d.Stats.PracticeMinutes)
	fmt.Fprintf(&b, "🏆 Tests passed: <b>%d</b>, accuracy <b>%d%%</b>\n\n", d.Stats.TestsPassed, d.Stats.Accuracy)
	fmt.Fprintf(&b, "<b>Today's tasks</b> (%d/%d, %d%%)\n", d.Completed, d.Total, d.Percent)
	for _, t := range d.Tasks {
		mark := "⬜"
		if t.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s <i>(%s)</i>\n", mark, escape(t.Title), escape(t.Duration))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatVocabulary(words []catalog.Word) string {
	if len(words) == 0 {
		return "No words match."
	}
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteString("\n\n")
		}
		mark := ""
		if w.IsLearned {
			mark = " ✅"
		}
		fmt.Fprintf(&b, "<b>%s</b>%s <code>%s</code>\n%s · %s\n%s (%s)\n<i>%s</i>",
			escape(w.Word), mark, escape(w.ID),
			escape(string(w.Category)), escape(string(w.Difficulty)),
			escape(w.MeaningEn), escape(w.MeaningHi),
			escape(w.Example))
	}
	return b.String()
}

func formatWeekly(days []analytics.DailyStats) string {
	var b strings.Builder
	b.WriteString("📈 <b>This week</b>\n<pre>")
	b.WriteString("Day  Words  Min  Sessions\n")
	for _, d := range days {
		fmt.Fprintf(&b, "%-4s %5d %4d %9d\n", d.Day, d.WordsLearned, d.PracticeMinutes, d.Sessions)
	}
	b.WriteString("</pre>")
	return b.String()
}
