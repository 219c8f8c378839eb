package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/sandevgo/carebot/pkg/retry"
)

// NewProvider creates the configured AIProvider wrapped with timeout and retries.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (*Resilient, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	s := Sampling{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}

	var p core.AIProvider
	switch cfg.Provider {
	case "openai":
		p = newBearer(openAIEndpoint, cfg.OpenAIAPIKey, cfg.Model, s)
	case "gemini":
		p = newBearer(geminiEndpoint, cfg.GeminiAPIKey, cfg.Model, s)
	case "custom":
		if cfg.CustomBaseURL == "" {
			return nil, fmt.Errorf("custom llm provider needs CUSTOM_OPENAI_BASE_URL")
		}
		p = newBearer(endpoint{baseURL: cfg.CustomBaseURL}, cfg.CustomAPIKey, cfg.Model, s)
	case "openrouter":
		p = NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, s)
	case "anthropic":
		p = NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, s)
	case "ollama":
		p = NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model, s)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	rc := retry.NewDefaultConfig()
	rc.MaxRetries = cfg.MaxRetries
	return NewResilient(p, retry.NewRetrier(rc), cfg.Timeout), nil
}
