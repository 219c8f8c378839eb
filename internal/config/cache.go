package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type CacheConfig struct {
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	Capacity int           `env:"CACHE_CAPACITY" envDefault:"1000"`

	// RedisAddr switches the session cache to redis when set.
	RedisAddr     string `env:"CACHE_REDIS_ADDR"`
	RedisPassword string `env:"CACHE_REDIS_PASSWORD"`
	RedisDB       int    `env:"CACHE_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"CACHE_REDIS_PREFIX" envDefault:"carebot:session"`
}

func NewCacheConfig(ctx context.Context) *CacheConfig {
	c := &CacheConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Cache config")
	}
	return c
}
