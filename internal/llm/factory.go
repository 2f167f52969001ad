package llm

import (
	"fmt"
	"strings"

	"lovable-tutor/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenRouterReferrer string
	OpenRouterTitle    string
	YandexOAuthToken   string
	YandexFolderID     string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		if f.OpenaiAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, model, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// NewFromConfig builds the process-wide client selected by LLM_PROVIDER.
func NewFromConfig(cfg *config.Config) (Client, error) {
	return NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
}
