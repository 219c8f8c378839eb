package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Defaults returns the configs populated only from envDefault tags, ignoring the
// process environment. Used to seed a fresh .env file.
func Defaults() (*AppConfig, *LLMConfig, *EmbeddingConfig, *CacheConfig, *HTTPConfig, error) {
	opts := env.Options{Environment: map[string]string{}}

	app := &AppConfig{}
	llm := &LLMConfig{}
	emb := &EmbeddingConfig{}
	cache := &CacheConfig{}
	httpCfg := &HTTPConfig{}

	for _, c := range []any{app, llm, emb, cache, httpCfg} {
		if err := env.ParseWithOptions(c, opts); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("parse defaults: %w", err)
		}
	}
	return app, llm, emb, cache, httpCfg, nil
}
