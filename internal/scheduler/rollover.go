package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"lovable-tutor/internal/analytics"
	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/storage"
)

// Progress is the part of progress.Service the rollover needs.
type Progress interface {
	RollOverDay(ctx context.Context) (catalog.Stats, error)
	Activity() ([]storage.Event, error)
}

// RolloverJob logs a report for the day that just ended, then rolls the
// learner's tasks and streak over.
func RolloverJob(p Progress, now func() time.Time) func(ctx context.Context) error {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func(ctx context.Context) error {
		events, err := p.Activity()
		if err != nil {
			log.Printf("⚠️ Failed to load activity for the daily report: %v", err)
		} else {
			report := analytics.AnalyzeDay(events, reportDay(now()))
			log.Printf("📊 %s", report.GenerateReportSummary())
		}

		stats, err := p.RollOverDay(ctx)
		if err != nil {
			return fmt.Errorf("roll over day: %w", err)
		}
		log.Printf("✅ Streak is now %d", stats.Streak)
		return nil
	}
}

// reportDay is the UTC day that ended when the rollover fired. Cron runs
// in UTC, so a local clock east of UTC would already be on the next day.
func reportDay(firedAt time.Time) time.Time {
	return firedAt.UTC().Add(-time.Minute)
}
