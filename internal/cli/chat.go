// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for chatnexus.
//
// Interactive Commands (during chat):
//
//	/models             List installed models
//	/download [name]    Download a model and make it current
//	/switch [name]      Change the current model
//	/settings [k v]     Show or change settings
//	/history            Show the conversation
//	/clear              Forget the conversation
//	/help, /h           Show available commands
//	/exit, /quit, /q    Leave
//	Ctrl+C              Stop the reply and exit
//	Ctrl+D              Exit

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatnexus/internal/commands"
	"github.com/jeranaias/chatnexus/internal/config"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/session"
)

// chatPrompt is the REPL prompt. liner measures prompts in runes, so it
// carries no colour.
const chatPrompt = "you> "

// startupTimeout bounds the server check and model listing at start-up.
const startupTimeout = 10 * time.Second

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession wires the REPL to a session loop.
type chatSession struct {
	app       *app
	out       io.Writer
	input     lineInput
	ui        *terminalUI
	registry  *commands.Registry
	completer *commands.Completer
	env       *commands.Env
	loop      *session.Loop
	sink      *terminalSink
	backend   *ollamaBackend

	showStats bool
	quiet     bool

	// wait starts the waiting indicator for a turn.
	wait func() func()
}

// lineInput is the part of lineReader the REPL uses.
type lineInput interface {
	prompter
	ReadLine(prompt string) (string, error)
}

func newChatSession(a *app, out io.Writer, input lineInput) *chatSession {
	c := &chatSession{
		app:       a,
		out:       out,
		input:     input,
		ui:        newTerminalUI(out, input),
		registry:  commands.NewRegistry(),
		sink:      newTerminalSink(out, a.cfg.Chat.ShowThinking),
		backend:   newOllamaBackend(a.client),
		showStats: a.cfg.UI.ShowStats,
		quiet:     a.opts.quiet,
		wait:      func() func() { return func() {} },
	}
	c.ui.markdown = c.ui.markdown && a.cfg.UI.RenderMarkdown
	c.loop = session.NewLoop(c.backend, c.sink, loopOptions(a.cfg))
	c.env = &commands.Env{
		Loop:           c.loop,
		Catalog:        a.catalog,
		Config:         a.cfg,
		Registry:       c.registry,
		UI:             c.ui,
		SaveSetting:    c.saveSetting,
		OnConfigChange: c.applyConfig,
	}
	c.completer = commands.NewCompleter(c.registry, c.env)
	return c
}

func loopOptions(cfg *config.Config) session.Options {
	return session.Options{
		SendHistory: cfg.Chat.SendHistory,
		System:      cfg.Chat.SystemPrompt,
	}
}

// saveSetting writes a changed setting to the config file.
func (c *chatSession) saveSetting(key, value string) error {
	return config.UpdateFile(c.app.configPath, key, value)
}

// applyConfig makes a changed configuration take effect for later turns.
func (c *chatSession) applyConfig(cfg *config.Config) {
	c.loop.SetOptions(loopOptions(cfg))
	c.sink.setShowThinking(cfg.Chat.ShowThinking)
	c.showStats = cfg.UI.ShowStats
	c.ui.markdown = IsStdoutTTY() && cfg.UI.RenderMarkdown
	ConfigureColor(cfg.UI.NoColor)

	client, err := newClient(cfg)
	if err != nil {
		log.Warn("keeping previous Ollama client", "err", err)
		return
	}
	c.app.client = client
	c.app.catalog = models.NewCatalog(client)
	c.backend.client = client
	c.env.Catalog = c.app.catalog
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// runChat checks the server, selects a model and runs the REPL until the
// user exits.
func runChat(ctx context.Context, a *app, out io.Writer) error {
	checkCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	err := a.client.CheckRunning(checkCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ollama is not running at %s (start it with: ollama serve): %w", a.client.BaseURL(), err)
	}

	historyFile := ""
	if err := config.EnsureConfigDir(); err == nil {
		historyFile, _ = config.HistoryPath()
	}

	var c *chatSession
	reader := newLineReader(historyFile, func(line string) []string {
		return c.completer.Complete(line)
	})
	defer reader.Close()

	c = newChatSession(a, out, reader)
	if IsStderrTTY() {
		c.wait = func() func() { return startWaiting(os.Stderr, "waiting for "+c.loop.Model()) }
	}
	return c.run(ctx)
}

// run shows the banner, selects a model and reads input until exit.
func (c *chatSession) run(ctx context.Context) error {
	if !c.quiet {
		c.printWelcome()
	}

	model, err := c.selectModel(ctx)
	if err != nil {
		if isAbort(err) {
			c.printGoodbye()
			return nil
		}
		return err
	}
	c.loop.SetModel(model)
	c.ui.Success("Chatting with " + model + ". Type /help for commands.")
	fmt.Fprintln(c.out)

	for {
		line, err := c.input.ReadLine(chatPrompt)
		if err != nil {
			if isAbort(err) {
				fmt.Fprintln(c.out)
				c.printGoodbye()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if commands.IsCommand(line) {
			err := c.registry.Execute(ctx, c.env, line)
			if isAbort(err) {
				fmt.Fprintln(c.out)
				c.printGoodbye()
				return nil
			}
			if errors.Is(err, commands.ErrExit) {
				c.printGoodbye()
				return nil
			}
			if err != nil {
				c.ui.Error(err)
			}
			continue
		}

		if err := c.chat(ctx, line); err != nil {
			if errors.Is(err, session.ErrInterrupted) {
				c.ui.Warn("Interrupted.")
				c.printGoodbye()
				return nil
			}
			c.ui.Error(err)
		}
	}
}

// chat runs one turn and, when the backend fails, offers to clear the
// history and retry. Aborting the retry prompt ends the session like an
// interrupted turn.
func (c *chatSession) chat(ctx context.Context, text string) error {
	for {
		err := c.turn(ctx, text)
		var backendErr *session.BackendError
		if !errors.As(err, &backendErr) {
			return err
		}

		c.ui.Error(err)
		answer, perr := c.input.Prompt("Clear history and retry? [y/N] ")
		if isAbort(perr) {
			return session.ErrInterrupted
		}
		if perr != nil || !isYes(answer) {
			return nil
		}
		cleared := c.loop.History().Len()
		c.loop.History().Clear()
		log.Info("history cleared for retry", "messages", cleared)
	}
}

// turn sends text to the model. Ctrl+C cancels the turn.
func (c *chatSession) turn(ctx context.Context, text string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(c.out)
	c.sink.begin(c.wait())
	_, err := c.loop.Send(ctx, text)
	c.sink.finish()

	if err == nil {
		if stats := c.backend.LastStats(); c.showStats && stats != nil && stats.Complete() {
			fmt.Fprintln(c.out, DimStyle.Render(stats.Format()))
		}
		fmt.Fprintln(c.out)
	}
	return err
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// selectModel returns the configured model, or asks the user to pick one
// of the installed models. With nothing installed it offers a download.
func (c *chatSession) selectModel(ctx context.Context) (string, error) {
	listCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if name := c.app.cfg.DefaultModel; name != "" {
		if _, err := c.app.client.GetModel(listCtx, name); ollama.IsModelNotFound(err) {
			c.ui.Warn(fmt.Sprintf("Model %s is not installed. Use /download %s to get it.", name, name))
		}
		return name, nil
	}

	installed, err := c.env.Catalog.Installed(listCtx)
	if err != nil {
		return "", err
	}
	if len(installed) == 0 {
		c.ui.Info("No models installed yet.")
		if err := c.registry.Execute(ctx, c.env, "/download"); err != nil {
			return "", err
		}
		return c.loop.Model(), nil
	}

	c.ui.ShowModels("Available Models", installed, "")
	for {
		choice, err := c.ui.Prompt("Select model number", "1")
		if err != nil {
			return "", err
		}
		m, err := models.Pick(installed, choice)
		if err == nil {
			return m.Name, nil
		}
		c.ui.Warn(err.Error())
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

func (c *chatSession) printWelcome() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, RenderHeading("chatnexus "+Version))
	fmt.Fprintf(c.out, "%s %s\n", LabelStyle.Render("Server:"), ValueStyle.Render(c.app.client.BaseURL()))
	fmt.Fprintf(c.out, "%s %s\n", LabelStyle.Render("Thinking panel:"), ValueStyle.Render(onOff(c.app.cfg.Chat.ShowThinking)))
	fmt.Fprintf(c.out, "%s %s\n", LabelStyle.Render("Send history:"), ValueStyle.Render(onOff(c.app.cfg.Chat.SendHistory)))
	fmt.Fprintln(c.out)
}

func (c *chatSession) printGoodbye() {
	stats := c.loop.Stats()
	if stats.Turns > 0 {
		elapsed := time.Since(stats.StartTime).Round(time.Second)
		fmt.Fprintln(c.out, DimStyle.Render(fmt.Sprintf("%d turns in %s", stats.Turns, elapsed)))
	}
	fmt.Fprintln(c.out, InfoStyle.Render("Goodbye!"))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// isAbort reports whether err means the user left the prompt with Ctrl+C
// or Ctrl+D.
func isAbort(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF)
}
