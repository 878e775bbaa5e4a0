// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/chatnexus/internal/config"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/util"
)

// =============================================================================
// REGISTRATION
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/models",
		Description: "List installed models",
		Usage:       "/models",
		Handler:     handleModels,
	})
	r.Register(&Command{
		Name:        "/download",
		Aliases:     []string{"/pull"},
		Description: "Download a model and make it current",
		Usage:       "/download [name]",
		Handler:     handleDownload,
	})
	r.Register(&Command{
		Name:        "/switch",
		Aliases:     []string{"/model"},
		Description: "Change the current model",
		Usage:       "/switch [name]",
		Complete:    completeModels,
		Handler:     handleSwitch,
	})
	r.Register(&Command{
		Name:        "/settings",
		Aliases:     []string{"/set"},
		Description: "Show or change settings",
		Usage:       "/settings [key value]",
		Complete:    completeSettings,
		Handler:     handleSettings,
	})
	r.Register(&Command{
		Name:        "/history",
		Description: "Show the conversation so far",
		Usage:       "/history",
		Handler:     handleHistory,
	})
	r.Register(&Command{
		Name:        "/clear",
		Description: "Forget the conversation",
		Usage:       "/clear",
		Handler:     handleClear,
	})
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "/exit",
		Aliases:     []string{"/quit", "/q"},
		Description: "Leave chatnexus",
		Usage:       "/exit",
		Handler: func(context.Context, *Env, []string) error {
			return ErrExit
		},
	})
}

// =============================================================================
// MODEL COMMANDS
// =============================================================================

func handleModels(ctx context.Context, env *Env, _ []string) error {
	list, err := env.Catalog.Installed(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		env.UI.Info("No models installed. Use /download to get started.")
		return nil
	}
	env.UI.ShowModels("Installed Models", list, env.Loop.Model())
	return nil
}

func handleDownload(ctx context.Context, env *Env, args []string) error {
	if len(args) > 1 {
		return &UsageError{Command: "/download", Usage: "/download [name]", Message: "expects a single model name"}
	}
	raw := strings.Join(args, " ")
	if strings.TrimSpace(raw) == "" {
		var err error
		raw, err = env.UI.Prompt("Enter model name to download", "")
		if err != nil {
			return err
		}
	}

	name, hint, err := models.Validate(raw)
	if err != nil {
		return err
	}
	if hint != "" {
		env.UI.Warn("Hint: " + hint)
	}

	err = env.UI.Pull(ctx, name, func(report func(ollama.PullProgress) error) error {
		_, err := env.Catalog.Download(ctx, name, report)
		return err
	})
	if err != nil {
		return err
	}

	env.Loop.SetModel(name)
	env.UI.Success("Successfully downloaded and set as current model: " + name)
	return nil
}

func handleSwitch(ctx context.Context, env *Env, args []string) error {
	list, err := env.Catalog.Installed(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		env.UI.Warn("No models installed. Use /download to get started.")
		return nil
	}

	var chosen models.Model
	if len(args) > 0 {
		name, _, err := models.Validate(strings.Join(args, " "))
		if err != nil {
			return err
		}
		m, ok := models.Find(list, name)
		if !ok {
			return &models.NotFoundError{
				Name:        name,
				Suggestions: util.Suggest(name, models.Names(list), maxSuggestions),
			}
		}
		chosen = m
	} else {
		env.UI.ShowModels("Available Models", list, env.Loop.Model())
		choice, err := env.UI.Prompt("Select model number", "1")
		if err != nil {
			return err
		}
		if chosen, err = models.Pick(list, choice); err != nil {
			return err
		}
	}

	env.Loop.SetModel(chosen.Name)
	env.UI.Success("Switched to model: " + chosen.Name)
	return nil
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func handleHistory(_ context.Context, env *Env, _ []string) error {
	turns := env.Loop.History().Turns()
	if len(turns) == 0 {
		env.UI.Info("No conversation history yet")
		return nil
	}
	env.UI.ShowHistory(turns)
	return nil
}

func handleClear(_ context.Context, env *Env, _ []string) error {
	history := env.Loop.History()
	n := history.Len()
	if n == 0 {
		env.UI.Info("No conversation history yet")
		return nil
	}
	history.Clear()
	env.UI.Success(fmt.Sprintf("Conversation cleared (%d messages)", n))
	return nil
}

func handleHelp(_ context.Context, env *Env, _ []string) error {
	env.UI.ShowHelp(env.Registry.Visible())
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func handleSettings(_ context.Context, env *Env, args []string) error {
	switch len(args) {
	case 0:
		env.UI.ShowSettings(env.Config)
		return nil
	case 1:
		value, err := env.Config.Get(args[0])
		if err != nil {
			return settingError(args[0], err)
		}
		env.UI.Info(fmt.Sprintf("%s = %q", strings.ToLower(args[0]), value))
		return nil
	}

	key, value := args[0], strings.Join(args[1:], " ")
	if err := env.Config.Set(key, value); err != nil {
		return settingError(key, err)
	}
	if env.OnConfigChange != nil {
		env.OnConfigChange(env.Config)
	}

	msg := fmt.Sprintf("%s = %q", strings.ToLower(key), value)
	if env.SaveSetting == nil {
		env.UI.Success(msg + " (this session only)")
		return nil
	}
	if err := env.SaveSetting(key, value); err != nil {
		return fmt.Errorf("setting applied but not saved: %w", err)
	}
	env.UI.Success(msg + " (saved)")
	return nil
}

// settingError adds close key names when key is not a setting.
func settingError(key string, err error) error {
	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return err
	}
	if _, getErr := config.Default().Get(key); getErr == nil {
		return err
	}
	if suggestions := util.Suggest(strings.ToLower(key), config.Keys(), maxSuggestions); len(suggestions) > 0 {
		return fmt.Errorf("%w. Did you mean %s?", err, strings.Join(suggestions, " or "))
	}
	return err
}
