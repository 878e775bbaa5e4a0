// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatnexus/internal/config"
	chatlog "github.com/jeranaias/chatnexus/internal/log"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// rootOptions holds the global flag values.
type rootOptions struct {
	model      string
	host       string
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
}

// app is the state shared by every command once flags are parsed.
type app struct {
	opts       *rootOptions
	cfg        *config.Config
	configPath string
	client     *ollama.Client
	catalog    *models.Catalog
	logCloser  io.Closer
}

// setup loads configuration, applies flag overrides, configures logging and
// colour, and connects the Ollama client.
func (a *app) setup() error {
	path := a.opts.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return &ConfigError{Path: "(default)", Err: err}
		}
		path = p
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if a.opts.host != "" {
		cfg.Ollama.URL = a.opts.host
	}
	if a.opts.model != "" {
		cfg.DefaultModel = a.opts.model
	}
	if a.opts.noColor {
		cfg.UI.NoColor = true
	}

	closer, err := chatlog.Setup(chatlog.Options{
		Verbose: a.opts.verbose,
		Quiet:   a.opts.quiet,
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
	})
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	a.logCloser = closer
	ConfigureColor(cfg.UI.NoColor)

	client, err := newClient(cfg)
	if err != nil {
		if a.opts.host != "" {
			return &UsageError{Err: fmt.Errorf("invalid --host: %w", err)}
		}
		return &ConfigError{Path: path, Err: err}
	}

	a.cfg = cfg
	a.configPath = path
	a.client = client
	a.catalog = models.NewCatalog(client)
	log.Debug("configuration loaded", "path", path, "ollama", client.BaseURL())
	return nil
}

func newClient(cfg *config.Config) (*ollama.Client, error) {
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:           cfg.Ollama.URL,
		Timeout:           cfg.RequestTimeout(),
		StreamIdleTimeout: cfg.StreamIdleTimeout(),
		Options:           cfg.ModelOptions(),
	})
}

func (a *app) close() {
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the chatnexus command tree.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *app) {
	a := &app{opts: &rootOptions{}}

	root := &cobra.Command{
		Use:   "chatnexus",
		Short: "Chat with local Ollama models in your terminal",
		Long: `chatnexus is an interactive terminal client for a local Ollama server.

Pick an installed model, then chat with it. Reasoning that a model wraps in
<think> tags is shown in a separate Thinking panel, apart from the answer.
Type /help inside the chat for slash commands.`,
		Example: `  chatnexus                      Start chatting, choosing a model from a menu
  chatnexus -m qwen3:8b          Start chatting with a specific model
  chatnexus --host 10.0.0.5      Use an Ollama server on another machine
  chatnexus pull qwen3:8b        Download a model`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.model, "model", "m", "", "model to chat with (skips the selection menu)")
	flags.StringVar(&a.opts.host, "host", "", "Ollama server URL (default from config or OLLAMA_HOST)")
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default ~/.chatnexus/config.toml)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&a.opts.quiet, "quiet", "q", false, "only log errors and skip the banner")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newModelsCommand(a))
	root.AddCommand(newPullCommand(a))
	root.AddCommand(newVersionCommand(a))
	root.AddCommand(newDoctorCommand(a))
	return root, a
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return execute(context.Background(), nil)
}

func execute(ctx context.Context, args []string) int {
	root, a := newRoot()
	defer a.close()
	if args != nil {
		root.SetArgs(args)
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	DisplayError(root.ErrOrStderr(), err)
	return GetExitCode(err)
}
