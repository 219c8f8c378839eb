package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/pkg/env"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create the runtime directory with a default .env and severity.yaml",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		if err := os.MkdirAll(runtimePath, 0o755); err != nil {
			return fmt.Errorf("create runtime dir: %w", err)
		}

		envContent, err := defaultEnv()
		if err != nil {
			return err
		}
		if err := writeFile(config.GetEnvPath(), []byte(envContent), 0o600, initForce); err != nil {
			return err
		}

		sevContent, err := config.DefaultSeverityConfig().Marshal()
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(runtimePath, "severity.yaml"), sevContent, 0o644, initForce); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Edit .env, then run 'care serve' or 'care chat'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

// defaultEnv renders every config section with its built-in defaults.
func defaultEnv() (string, error) {
	app, llmCfg, emb, cacheCfg, httpCfg, err := config.Defaults()
	if err != nil {
		return "", err
	}

	sections := []struct {
		title string
		cfg   any
	}{
		{"App", app},
		{"LLM", llmCfg},
		{"Embedding", emb},
		{"Session cache", cacheCfg},
		{"HTTP", httpCfg},
	}

	var b strings.Builder
	for _, s := range sections {
		content, err := env.MarshalEnv(s.cfg)
		if err != nil {
			return "", fmt.Errorf("marshal %s config: %w", s.title, err)
		}
		fmt.Fprintf(&b, "# %s\n%s\n\n", s.title, strings.TrimSpace(content))
	}
	return b.String(), nil
}

func writeFile(path string, data []byte, perm os.FileMode, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
