// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"

	"github.com/jeranaias/chatnexus/internal/config"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/session"
)

// UI is the terminal surface command handlers talk to.
type UI interface {
	// Prompt asks for a line of input, returning def for an empty answer.
	Prompt(label, def string) (string, error)

	Info(msg string)
	Warn(msg string)
	Success(msg string)

	ShowModels(title string, list []models.Model, active string)
	ShowHistory(turns []session.Turn)
	ShowSettings(cfg *config.Config)
	ShowHelp(cmds []*Command)

	// Pull runs a download, rendering the progress reported to run's
	// callback until run returns.
	Pull(ctx context.Context, name string, run func(report func(ollama.PullProgress) error) error) error
}

// Env is the state a command acts on.
type Env struct {
	Loop     *session.Loop
	Catalog  *models.Catalog
	Config   *config.Config
	Registry *Registry
	UI       UI

	// SaveSetting persists a setting changed by /settings. When nil,
	// changes last for the current session only.
	SaveSetting func(key, value string) error

	// OnConfigChange is called after a setting changes so the caller can
	// apply it to the running session.
	OnConfigChange func(*config.Config)
}
