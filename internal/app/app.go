// Package app wires the shared core used by every front-end.
package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/config"
	"lovable-tutor/internal/llm"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
	"lovable-tutor/internal/storage"
	"lovable-tutor/internal/tutor"
)

type App struct {
	Config   *config.Config
	Tutor    *tutor.Client
	Progress *progress.Service
	Session  *session.Controller

	closers []io.Closer
}

// Build creates one tutor client, one progress service and one session
// controller from cfg.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	llmClient, err := llm.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return BuildWith(ctx, cfg, llmClient)
}

// BuildWith is Build with an explicit model client.
func BuildWith(ctx context.Context, cfg *config.Config, llmClient llm.Client) (*App, error) {
	a, err := OpenProgress(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Tutor = tutor.New(llmClient, tutor.Options{
		SystemPrompt:  tutor.LoadSystemPrompt(cfg.SystemPromptPath),
		Timeout:       cfg.TutorTimeout,
		SurfaceErrors: cfg.TutorSurfaceErrors,
	})
	a.Session = session.New(a.Tutor, a.Progress)

	log.Printf("✅ Core ready: provider=%s storage=%s credit=%dmin", cfg.LLMProvider, cfg.StorageDriver, cfg.PracticeCreditMinutes)
	return a, nil
}

// OpenProgress opens storage and the progress service only. Tutor and
// Session stay nil, so no model credentials are needed.
func OpenProgress(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := storage.Open(cfg.StorageDriver, cfg.StorageDSN, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	var rec storage.Recorder
	if cfg.ActivityLogPath != "" {
		fr, err := storage.NewFileRecorder(cfg.ActivityLogPath)
		if err != nil {
			log.Printf("failed to init activity log: %v", err)
		} else {
			rec = fr
		}
	}

	seed, err := catalog.Load(cfg.SeedPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Progress, err = progress.Open(ctx, store, seed, progress.Options{
		CreditMinutes: cfg.PracticeCreditMinutes,
		Recorder:      rec,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Printf("failed to close: %v", err)
		}
	}
	a.closers = nil
}
