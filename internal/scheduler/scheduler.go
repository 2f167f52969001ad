package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultRolloverSpec = "0 0 * * *"

// Scheduler runs the daily rollover on a cron schedule in UTC.
type Scheduler struct {
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	spec         string
	rolloverFunc func(ctx context.Context) error
}

func New(spec string) *Scheduler {
	if spec == "" {
		spec = DefaultRolloverSpec
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
	}
}

func (s *Scheduler) SetRolloverFunction(f func(ctx context.Context) error) {
	s.rolloverFunc = f
}

func (s *Scheduler) Start() error {
	if s.rolloverFunc == nil {
		log.Println("⚠️ Rollover function not set, scheduler will not roll days over")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("🕛 Triggered day rollover (%s UTC)", s.spec)
		if err := s.rolloverFunc(s.ctx); err != nil {
			log.Printf("❌ Day rollover failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rollover schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - day rollover at %q UTC", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
