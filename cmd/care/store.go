package main

import (
	"context"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
)

// openStore wires only the structured store, for maintenance commands that
// don't need the embedder or a provider.
func openStore(ctx context.Context) (core.StructuredStore, func() error, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, nil, err
	}
	cfg := config.NewAppConfig(ctx)
	store, _, closeStore, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, closeStore, nil
}
