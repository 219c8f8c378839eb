package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/service/ui"
	"github.com/sandevgo/carebot/pkg/conv"
	"github.com/sandevgo/carebot/pkg/log"
)

const DefaultOwnerID = "cli-local"

type ReadLine struct {
	cfg      *config.AppConfig
	chat     core.ChatHandler
	commands core.CmdRouter
	owner    string
	rl       *readline.Instance
}

func NewReadLine(cfg *config.AppConfig, chat core.ChatHandler, commands core.CmdRouter, owner string) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	if owner == "" {
		owner = DefaultOwnerID
	}

	return &ReadLine{
		cfg:      cfg,
		chat:     chat,
		commands: commands,
		owner:    owner,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("owner", r.owner).Msg("chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		fmt.Fprintln(r.rl.Stdout(), r.answer(ctx, line))
	}
}

// answer runs one line through the command router or the coordinator and renders
// the result for a terminal.
func (r *ReadLine) answer(ctx context.Context, line string) string {
	if r.commands != nil {
		if out, ok := r.commands.Execute(ctx, r.owner, line); ok {
			return ui.ReplyStyle.Render(out)
		}
	}

	reply, err := r.chat.Handle(ctx, core.Request{OwnerID: r.owner, Message: line})
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("chat turn failed")
		return ui.ErrorStyle.Render(core.ReplyUnavailable)
	}

	return renderReply(reply)
}

func renderReply(reply core.Reply) string {
	text := reply.Text
	if conv.LooksLikeHTML(text) {
		if plain, err := conv.HTMLToText(text); err == nil {
			text = plain
		}
	}

	switch reply.Intent {
	case core.IntentSeriousIssue, core.IntentFlaggedFollowUp:
		return ui.NoticeStyle.Render(text)
	default:
		return ui.ReplyStyle.Render(text)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
