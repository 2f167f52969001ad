package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"lovable-tutor/internal/analytics"
	"lovable-tutor/internal/progress"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show stats and today's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openProgress(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			printDashboard(cmd.OutOrStdout(), a.Progress.Dashboard())
			return nil
		},
	}
}

func printDashboard(out io.Writer, d progress.Dashboard) {
	s := d.Stats
	fmt.Fprintf(out, "🔥 Streak: %d days\n", s.Streak)
	fmt.Fprintf(out, "📚 Words learned: %d\n", s.WordsLearned)
	fmt.Fprintf(out, "⏱  Practice: %d min\n", s.PracticeMinutes)
	fmt.Fprintf(out, "✅ Tests passed: %d\n", s.TestsPassed)
	fmt.Fprintf(out, "🎯 Accuracy: %d%%\n", s.Accuracy)
	fmt.Fprintf(out, "\nToday's tasks (%d/%d, %d%%):\n", d.Completed, d.Total, d.Percent)
	for _, t := range d.Tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %s  %s (%s, %s)\n", mark, t.ID, t.Title, t.Type, t.Duration)
	}
}

func newProgressCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show practice activity for the last seven days",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openProgress(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			events, err := a.Progress.Activity()
			if err != nil {
				return fmt.Errorf("load activity: %w", err)
			}
			return printWeekly(cmd.OutOrStdout(), analytics.Weekly(events, time.Now()), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each day as JSON")
	return cmd
}

func printWeekly(out io.Writer, days []analytics.DailyStats, asJSON bool) error {
	for i := range days {
		d := &days[i]
		if asJSON {
			js, err := d.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, js)
			continue
		}
		fmt.Fprintf(out, "%s %s  practice %3d min  words %2d  sessions %d", d.Day, d.Date, d.PracticeMinutes, d.WordsLearned, d.Sessions)
		if d.AverageScore > 0 {
			fmt.Fprintf(out, "  avg %.0f", d.AverageScore)
		}
		fmt.Fprintln(out)
	}
	return nil
}
