package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Tutor
	SystemPromptPath      string        `env:"SYSTEM_PROMPT_PATH"`
	TutorTimeout          time.Duration `env:"TUTOR_TIMEOUT" envDefault:"30s"`
	TutorSurfaceErrors    bool          `env:"TUTOR_SURFACE_ERRORS" envDefault:"false"`
	PracticeCreditMinutes int           `env:"PRACTICE_CREDIT_MINUTES" envDefault:"30"`

	// Storage
	StorageDriver   string `env:"STORAGE_DRIVER" envDefault:"file"`
	StorageDSN      string `env:"STORAGE_DSN"`
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
	ActivityLogPath string `env:"ACTIVITY_LOG_PATH" envDefault:"logs/activity.jsonl"`
	SeedPath        string `env:"SEED_PATH"`

	// HTTP
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Daily rollover, evaluated in UTC
	RolloverCron string `env:"ROLLOVER_CRON" envDefault:"0 0 * * *"`

	// Telegram (cmd/bot only)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOwnerID  int64  `env:"TELEGRAM_OWNER_ID"`
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the environment without exiting on error.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
