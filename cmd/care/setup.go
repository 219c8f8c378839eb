package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/carebot/internal/cache"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/observability"
	"github.com/sandevgo/carebot/internal/providers/embedding"
	"github.com/sandevgo/carebot/internal/providers/llm"
	"github.com/sandevgo/carebot/internal/service/command"
	"github.com/sandevgo/carebot/internal/service/greeting"
	"github.com/sandevgo/carebot/internal/service/memory"
	"github.com/sandevgo/carebot/internal/service/severity"
	"github.com/sandevgo/carebot/internal/storage/postgres"
	"github.com/sandevgo/carebot/internal/storage/sqlite"
	"github.com/sandevgo/carebot/internal/storage/vector"
	"github.com/sandevgo/carebot/internal/transport/httpapi"
	"github.com/sandevgo/carebot/internal/transport/telegram"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/sandevgo/carebot/pkg/srv"
)

// App holds the wired components shared by the serve and chat commands.
type App struct {
	cfg         *config.AppConfig
	store       core.StructuredStore
	coordinator *memory.Coordinator
	commands    *command.Router
	metrics     *observability.Metrics

	// services are closers, stopped after the transports.
	services []srv.Service
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)
	a := &App{}

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	a.cfg = config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	embCfg := config.NewEmbeddingConfig(ctx)
	cacheCfg := config.NewCacheConfig(ctx)

	// 2. Storage
	store, persister, closeStore, err := initStorage(ctx, a.cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	a.store = store
	a.services = append(a.services, srv.NewCleanup("storage", closeStore))

	// 3. Embedder + vector index
	embedder, err := embedding.NewEmbedder(ctx, embCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	a.services = append(a.services, srv.NewCleanup("embedder", embedder.Close))

	vectors, err := initVectors(ctx, a.cfg, embedder.Dimension(), persister)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vector store")
	}

	greeter, err := greeting.NewDetector(ctx, embedder, nil, a.cfg.GreetingThreshold)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize greeting detector")
	}

	// 4. Severity
	sevCfg, err := config.LoadSeverityConfig(a.cfg.GetSeverityConfigPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load severity config")
	}

	// 5. Session cache
	sessions, closeCache, err := initSessionCache(ctx, cacheCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session cache")
	}
	a.services = append(a.services, srv.NewCleanup("session cache", closeCache))

	// 6. AI Provider
	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	a.metrics = observability.NewMetrics(nil)

	// 7. Coordinator + commands
	a.coordinator = memory.NewCoordinator(a.cfg, memory.Deps{
		Vectors:  vectors,
		Store:    store,
		Cache:    sessions,
		Embedder: embedder,
		Greeter:  greeter,
		Severity: severity.NewKeywordClassifier(sevCfg),
		AI:       aiProvider,
		Prompter: memory.NewSysPrompt(a.cfg.GetSystemPromptPath()),
		Metrics:  a.metrics,
	})
	a.commands = command.New(command.NewCommands(llmCfg, aiProvider, store))

	logger.Info().
		Str("provider", llmCfg.Provider).
		Str("model", llmCfg.Model).
		Str("embedding", embCfg.Provider).
		Int("records", vectors.Len()).
		Msg("carebot initialized")

	return a
}

// transports builds the inbound surfaces enabled in the app config.
func (a *App) transports(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	var services []srv.Service

	if a.cfg.EnableHTTP {
		httpCfg := config.NewHTTPConfig(ctx)
		services = append(services, httpapi.New(httpCfg, a.coordinator, a.store, a.metrics))
	}

	// Telegram Bot
	if a.cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.coordinator, a.commands)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if len(services) == 0 {
		logger.Warn().Msg("no transports enabled, set ENABLE_HTTP or ENABLE_TELEGRAM")
	}
	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (core.StructuredStore, core.RecordPersister, func() error, error) {
	if cfg.UsePostgres() {
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL, time.Now)
		if err != nil {
			return nil, nil, nil, err
		}
		log.FromCtx(ctx).Debug().Msg("using postgres storage")
		return pg, pg, pg.Close, nil
	}

	if err := os.MkdirAll(cfg.GetRuntimePath(), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create runtime dir: %w", err)
	}
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return sqlite.NewStore(db, time.Now), sqlite.NewRecordsRepo(db), db.Close, nil
}

func initVectors(ctx context.Context, cfg *config.AppConfig, dim int, persister core.RecordPersister) (*vector.Store, error) {
	metric, err := vector.ParseMetric(cfg.VectorMetric)
	if err != nil {
		return nil, err
	}
	vs, err := vector.NewStore(vector.Config{
		Dim:       dim,
		Metric:    metric,
		Persister: persister,
	})
	if err != nil {
		return nil, err
	}
	if err := vs.Load(ctx); err != nil {
		return nil, err
	}
	return vs, nil
}

func initSessionCache(ctx context.Context, cfg *config.CacheConfig) (core.SessionCache, func() error, error) {
	if cfg.RedisAddr == "" {
		return cache.NewSessions(cfg.TTL, cfg.Capacity, time.Now), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	log.FromCtx(ctx).Debug().Str("addr", cfg.RedisAddr).Msg("using redis session cache")
	return cache.NewRedis(client, cache.RedisConfig{
		Prefix:   cfg.RedisPrefix,
		TTL:      cfg.TTL,
		Capacity: cfg.Capacity,
	}), client.Close, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
