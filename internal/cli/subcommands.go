// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
)

// versionTimeout bounds the server version lookup.
const versionTimeout = 3 * time.Second

func newModelsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"ls"},
		Short:   "List installed models",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.catalog.Installed(cmd.Context())
			if err != nil {
				return err
			}
			ui := newTerminalUI(cmd.OutOrStdout(), nil)
			if len(list) == 0 {
				ui.Info("No models installed. Run 'chatnexus pull <name>' to download one.")
				return nil
			}
			ui.ShowModels("Installed Models", list, a.cfg.DefaultModel)
			return nil
		},
	}
}

func newPullCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "pull <name>",
		Aliases: []string{"download"},
		Short:   "Download a model from the Ollama registry",
		Example: "  chatnexus pull library/qwen3:8b",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := newTerminalUI(cmd.OutOrStdout(), nil)
			name, hint, err := models.Validate(args[0])
			if err != nil {
				return err
			}
			if hint != "" {
				ui.Warn("Hint: " + hint)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			err = ui.Pull(ctx, name, func(report func(ollama.PullProgress) error) error {
				_, err := a.catalog.Download(ctx, name, report)
				return err
			})
			if err != nil {
				return err
			}
			ui.Success("Downloaded " + name)
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chatnexus %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)

			ctx, cancel := context.WithTimeout(cmd.Context(), versionTimeout)
			defer cancel()
			if v, err := a.client.Version(ctx); err == nil {
				fmt.Fprintf(out, "ollama %s at %s\n", v, a.client.BaseURL())
			} else {
				fmt.Fprintf(out, "ollama not reachable at %s\n", a.client.BaseURL())
			}
			return nil
		},
	}
}
