package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/sandevgo/carebot/internal/transport/cli"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/sandevgo/carebot/pkg/srv"
	"github.com/spf13/cobra"
)

var chatOwner string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with CareBot in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := NewApp(ctx)

		rl, err := cli.NewReadLine(a.cfg, a.coordinator, a.commands, chatOwner)
		if err != nil {
			srv.StopServices(context.WithoutCancel(ctx), a.services)
			return err
		}

		err = rl.Start(ctx)
		srv.StopServices(context.WithoutCancel(ctx), append(a.services, rl))

		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("chat ended with error")
		}
		return err
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatOwner, "owner", "o", cli.DefaultOwnerID, "owner id the conversation is stored under")
	rootCmd.AddCommand(chatCmd)
}
