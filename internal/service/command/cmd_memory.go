package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/carebot/internal/core"
)

const defaultHistoryLimit = 10

type HistoryCommand struct {
	repo      core.HistoryRepository
	formatter *ResponseFormatter
}

func NewHistoryCommand(repo core.HistoryRepository) *HistoryCommand {
	return &HistoryCommand{repo: repo, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "Show your most recent messages"
}

func (c *HistoryCommand) Execute(ctx context.Context, ownerID string, args []string) (string, error) {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("limit must be a positive number, got %q", args[0])
		}
		limit = n
	}

	entries, err := c.repo.GetRecentHistory(ctx, ownerID, limit)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return c.formatter.Info("No messages yet"), nil
	}

	return c.formatter.Combine(
		c.formatter.Info("Recent Messages"),
		c.formatter.Messages(entries),
	), nil
}

type RoutineCommand struct {
	repo      core.RoutineRepository
	formatter *ResponseFormatter
}

func NewRoutineCommand(repo core.RoutineRepository) *RoutineCommand {
	return &RoutineCommand{repo: repo, formatter: NewResponseFormatter()}
}

func (c *RoutineCommand) Name() string {
	return "routine"
}

func (c *RoutineCommand) Description() string {
	return "Show the routine I remember for your latest day"
}

func (c *RoutineCommand) Execute(ctx context.Context, ownerID string, _ []string) (string, error) {
	entries, err := c.repo.GetRoutine(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to load routine: %w", err)
	}
	if len(entries) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("No routine found"),
			c.formatter.Tip("tell me something like \"I wake up at 7am and have lunch at 12:30pm\""),
		), nil
	}

	return c.formatter.Combine(
		c.formatter.Info("Routine for "+entries[0].Date),
		c.formatter.Routine(entries),
	), nil
}

type ForgetCommand struct {
	repo      core.FlagRepository
	formatter *ResponseFormatter
}

func NewForgetCommand(repo core.FlagRepository) *ForgetCommand {
	return &ForgetCommand{repo: repo, formatter: NewResponseFormatter()}
}

func (c *ForgetCommand) Name() string {
	return "forget"
}

func (c *ForgetCommand) Description() string {
	return "Stop asking about the last serious topic"
}

func (c *ForgetCommand) Execute(ctx context.Context, ownerID string, _ []string) (string, error) {
	issue, err := c.repo.GetLastFlaggedIssue(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to load flagged issue: %w", err)
	}
	if issue == nil {
		return c.formatter.Success("Nothing to forget"), nil
	}

	if err := c.repo.ClearFlaggedIssue(ctx, ownerID); err != nil {
		return "", fmt.Errorf("failed to clear flagged issue: %w", err)
	}
	return c.formatter.Success("Okay, I won't bring it up again"), nil
}
