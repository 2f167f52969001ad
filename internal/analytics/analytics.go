package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lovable-tutor/internal/storage"
)

// DailyStats aggregates one calendar day of activity.
type DailyStats struct {
	Date            string  `json:"date"`
	Day             string  `json:"day"`
	Sessions        int     `json:"sessions"`
	Turns           int     `json:"turns"`
	Corrections     int     `json:"corrections"`
	AverageScore    float64 `json:"average_score"`
	WordsLearned    int     `json:"words"`
	PracticeMinutes int     `json:"practice"`
	TasksStarted    int     `json:"tasks_started"`
}

// AnalyzeDay aggregates the events that fall on targetDate in its location.
// AverageScore is the mean of the per-session averages, ignoring sessions
// that produced no scored turn.
func AnalyzeDay(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date: startOfDay.Format("2006-01-02"),
		Day:  startOfDay.Weekday().String()[:3],
	}

	var scoreSum float64
	var scored int
	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		switch event.Kind {
		case storage.KindChatSession:
			stats.Sessions++
			stats.Turns += event.Turns
			stats.Corrections += event.Corrections
			stats.PracticeMinutes += event.PracticeMinutes
			if event.AverageScore > 0 {
				scoreSum += event.AverageScore
				scored++
			}
		case storage.KindWordLearned:
			stats.WordsLearned++
		case storage.KindTaskStarted:
			stats.TasksStarted++
		}
	}
	if scored > 0 {
		stats.AverageScore = scoreSum / float64(scored)
	}
	return stats
}

// Weekly returns seven consecutive days ending with end, oldest first.
func Weekly(events []storage.Event, end time.Time) []DailyStats {
	out := make([]DailyStats, 0, 7)
	for i := 6; i >= 0; i-- {
		out = append(out, *AnalyzeDay(events, end.AddDate(0, 0, -i)))
	}
	return out
}

// GenerateReportSummary renders a short plain-text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Practice report for %s (%s):\n", ds.Date, ds.Day)
	fmt.Fprintf(&b, "- Chat sessions: %d (%d turns, %d corrections)\n", ds.Sessions, ds.Turns, ds.Corrections)
	if ds.AverageScore > 0 {
		fmt.Fprintf(&b, "- Average sentence score: %.0f/100\n", ds.AverageScore)
	}
	fmt.Fprintf(&b, "- Practice minutes: %d\n", ds.PracticeMinutes)
	fmt.Fprintf(&b, "- Words learned: %d\n", ds.WordsLearned)
	if ds.TasksStarted > 0 {
		fmt.Fprintf(&b, "- Tasks started: %d\n", ds.TasksStarted)
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
