package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/providers/llm"
	"github.com/sandevgo/carebot/pkg/log"
)

// NewEmbedder builds the configured embedder behind a memo cache.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (*Cached, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Int("dim", cfg.Dim).
		Msg("starting embedder")

	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dim)
	}

	var inner core.Embedder
	switch cfg.Provider {
	case "hash":
		inner = NewHashEmbedder(cfg.Dim)
	case "openai":
		base := cfg.BaseURL
		if base == "" {
			base = "https://api.openai.com"
		}
		inner = llm.NewOpenAIEmbedder(base, cfg.APIKey, cfg.Model, cfg.Dim, true)
	case "ollama":
		base := cfg.BaseURL
		if base == "" {
			base = "http://localhost:11434"
		}
		inner = llm.NewOpenAIEmbedder(base, cfg.APIKey, cfg.Model, cfg.Dim, false)
	case "custom":
		inner = llm.NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dim, false)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	return NewCached(inner, cfg.CacheSize)
}
