package main

import (
	"fmt"

	"github.com/sandevgo/carebot/pkg/log"
	"github.com/spf13/cobra"
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Inspect or clear flagged issues",
}

var flagShowCmd = &cobra.Command{
	Use:          "show <owner>",
	Short:        "Show the flagged issue on record for an owner",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		issue, err := store.GetLastFlaggedIssue(ctx, args[0])
		if err != nil {
			return err
		}
		if issue == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "No flagged issue for %s.\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%s/%s] %s\n",
			issue.FlaggedAt.Format("2006-01-02 15:04"), issue.Category, issue.Keyword, issue.Message)
		return nil
	},
}

var flagClearCmd = &cobra.Command{
	Use:          "clear <owner>",
	Short:        "Clear the flagged issue for an owner",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.ClearFlaggedIssue(ctx, args[0]); err != nil {
			return err
		}
		log.FromCtx(ctx).Info().Str("owner", args[0]).Msg("flagged issue cleared")
		return nil
	},
}

func init() {
	flagCmd.AddCommand(flagShowCmd, flagClearCmd)
	rootCmd.AddCommand(flagCmd)
}
