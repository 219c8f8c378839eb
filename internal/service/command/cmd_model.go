package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
)

type ModelCommand struct {
	cfg       *config.LLMConfig
	models    core.ModelLister
	formatter *ResponseFormatter
}

func NewModelCommand(cfg *config.LLMConfig, models core.ModelLister) *ModelCommand {
	return &ModelCommand{
		cfg:       cfg,
		models:    models,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show the current model or list available ones"
}

func (c *ModelCommand) Execute(ctx context.Context, _ string, args []string) (string, error) {
	if len(args) == 0 || args[0] != "list" {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Provider", c.cfg.Provider),
			c.formatter.Label("Model", c.cfg.Model),
			c.formatter.Usage("/model list"),
		), nil
	}

	if c.models == nil {
		return "", fmt.Errorf("provider %s cannot list models", c.cfg.Provider)
	}

	models, err := c.models.Models(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}

	items := make([]string, 0, len(models))
	for _, m := range models {
		items = append(items, fmt.Sprintf("`%s`", m.ID))
	}
	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("Models (%d)", len(models))),
		c.formatter.List(items),
	), nil
}
