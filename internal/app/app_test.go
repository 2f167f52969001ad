package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovable-tutor/internal/config"
	"lovable-tutor/internal/llm"
)

type echoLLM struct{}

func (echoLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	return llm.Response{Content: `{"reply":"Hi there!","score":100}`}, nil
}

func testConfig(t *testing.T, driver string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		StorageDriver:         driver,
		StorageDSN:            filepath.Join(dir, "kv.db"),
		DataDir:               filepath.Join(dir, "data"),
		ActivityLogPath:       filepath.Join(dir, "logs", "activity.jsonl"),
		PracticeCreditMinutes: 30,
	}
}

func TestBuildWithEndToEnd(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			a, err := BuildWith(context.Background(), cfg, echoLLM{})
			require.NoError(t, err)
			defer a.Close()

			turn, err := a.Session.Send(context.Background(), "Hello")
			require.NoError(t, err)
			assert.Equal(t, "Hi there!", turn.Content)

			_, err = a.Session.End(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 450, a.Progress.Stats().PracticeMinutes)

			events, err := a.Progress.Activity()
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, 2, events[0].Turns)
		})
	}
}

func TestBuildRequiresKnownProvider(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.LLMProvider = "nope"
	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildRejectsBadSeed(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.SeedPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := BuildWith(context.Background(), cfg, echoLLM{})
	require.Error(t, err)
}

func TestOpenProgressNeedsNoModel(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.LLMProvider = "nope"
	a, err := OpenProgress(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Session)
	assert.Equal(t, 5, a.Progress.Dashboard().Total)
}
