package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type EmbeddingConfig struct {
	// Provider is one of hash, openai, ollama, custom.
	Provider  string `env:"EMBEDDING_PROVIDER" envDefault:"hash"`
	Model     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	BaseURL   string `env:"EMBEDDING_BASE_URL"`
	APIKey    string `env:"EMBEDDING_API_KEY"`
	Dim       int    `env:"EMBEDDING_DIM" envDefault:"384"`
	CacheSize int64  `env:"EMBEDDING_CACHE_SIZE" envDefault:"10000"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
