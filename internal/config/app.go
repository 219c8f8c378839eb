package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CARE_RUNTIME_PATH" envDefault:".carebot"`
	// DatabaseURL switches persistence to postgres when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`

	// Retrieval
	HistoryLimit      int     `env:"HISTORY_LIMIT" envDefault:"5"`
	SimilarLimit      int     `env:"SIMILAR_LIMIT" envDefault:"3"`
	VectorMetric      string  `env:"VECTOR_METRIC" envDefault:"l2"`
	GreetingThreshold float32 `env:"GREETING_THRESHOLD" envDefault:"0.65"`
	MaxContextTokens  int     `env:"MAX_CONTEXT_TOKENS" envDefault:"0"`

	// Flagged issues
	FlagTTL            time.Duration `env:"FLAG_TTL" envDefault:"72h"`
	SeverityConfigPath string        `env:"SEVERITY_CONFIG_PATH"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "carebot.db")
}

func (c AppConfig) GetSeverityConfigPath() string {
	if c.SeverityConfigPath != "" {
		return c.SeverityConfigPath
	}
	return filepath.Join(c.RuntimePath, "severity.yaml")
}

// GetSystemPromptPath is an optional file that replaces the built-in persona prompt.
func (c AppConfig) GetSystemPromptPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

func (c AppConfig) UsePostgres() bool {
	return c.DatabaseURL != ""
}
