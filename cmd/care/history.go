package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:          "history <owner>",
	Short:        "Print the most recent messages of an owner",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be positive, got %d", historyLimit)
		}

		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		entries, err := store.GetRecentHistory(ctx, args[0], historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No history for %s.\n", args[0])
			return nil
		}

		// oldest first reads like a transcript
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Message)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of messages to print")
	rootCmd.AddCommand(historyCmd)
}
