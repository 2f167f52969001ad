package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lovable-tutor/internal/app"
	"lovable-tutor/internal/config"
	"lovable-tutor/internal/scheduler"
	"lovable-tutor/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.TelegramOwnerID == 0 {
		log.Fatalf("TELEGRAM_OWNER_ID is required: the bot serves a single learner")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}
	defer a.Close()

	sched := scheduler.New(cfg.RolloverCron)
	sched.SetRolloverFunction(scheduler.RolloverJob(a.Progress, nil))
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramOwnerID, a.Progress, a.Session)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	bot.Start(ctx)
}
