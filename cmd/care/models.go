package main

import (
	"fmt"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/providers/llm"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:          "models",
	Short:        "List the models offered by the configured LLM provider",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		llmCfg := config.NewLLMConfig(ctx)

		provider, err := llm.NewProvider(ctx, llmCfg)
		if err != nil {
			return err
		}
		models, err := provider.Models(ctx)
		if err != nil {
			return err
		}

		for _, m := range models {
			marker := " "
			if m.ID == llmCfg.Model {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
