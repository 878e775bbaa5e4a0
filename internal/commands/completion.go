// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/jeranaias/chatnexus/internal/config"
	"github.com/jeranaias/chatnexus/internal/models"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer provides tab completion for the REPL line editor.
type Completer struct {
	registry *Registry
	env      *Env
}

// NewCompleter creates a completer over registry's commands.
func NewCompleter(registry *Registry, env *Env) *Completer {
	return &Completer{registry: registry, env: env}
}

// Complete returns full replacement lines for line. Text that is not a
// command gets no completions.
func (c *Completer) Complete(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	end := strings.IndexFunc(line, unicode.IsSpace)
	if end == -1 {
		return c.completeName(line)
	}

	cmd := c.registry.Get(line[:end])
	if cmd == nil || cmd.Complete == nil {
		return nil
	}

	// Only the first argument is completed.
	rest := strings.TrimLeftFunc(line[end:], unicode.IsSpace)
	if strings.IndexFunc(rest, unicode.IsSpace) != -1 {
		return nil
	}

	prefix := line[:len(line)-len(rest)]
	var out []string
	for _, candidate := range cmd.Complete(c.env, nil) {
		if strings.HasPrefix(candidate, rest) {
			out = append(out, prefix+candidate)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Completer) completeName(partial string) []string {
	partial = strings.ToLower(partial)
	var out []string
	for _, cmd := range c.registry.Visible() {
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, cmd.Name)
		}
	}
	return out
}

// =============================================================================
// ARGUMENT COMPLETERS
// =============================================================================

func completeSettings(*Env, []string) []string {
	return config.Keys()
}

// completionTimeout bounds the model listing done on a tab press.
const completionTimeout = 2 * time.Second

func completeModels(env *Env, _ []string) []string {
	if env == nil || env.Catalog == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	installed, err := env.Catalog.Installed(ctx)
	if err != nil {
		return nil
	}
	return models.Names(installed)
}
