// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/chatnexus/internal/util"
)

// maxSuggestions is how many close matches an unknown command reports.
const maxSuggestions = 2

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command with its parsed arguments.
type Handler func(ctx context.Context, env *Env, args []string) error

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/download [name]")
	Usage string

	// Complete returns candidates for the argument being typed.
	Complete func(env *Env, args []string) []string

	Handler Handler

	// Hidden commands don't appear in help
	Hidden bool
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []string
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, ignoring case.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns the registered commands in registration order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Visible returns the commands shown in help.
func (r *Registry) Visible() []*Command {
	var cmds []*Command
	for _, cmd := range r.All() {
		if !cmd.Hidden {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Names returns every command name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Suggest returns up to two command names close to name.
func (r *Registry) Suggest(name string) []string {
	primary := make([]string, 0, len(r.order))
	for _, cmd := range r.All() {
		if !cmd.Hidden {
			primary = append(primary, cmd.Name)
		}
	}
	return util.Suggest(strings.ToLower(name), primary, maxSuggestions)
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses input and runs the matching command. An unrecognised name
// yields *UnknownCommandError; /exit yields ErrExit.
func (r *Registry) Execute(ctx context.Context, env *Env, input string) error {
	result := Parse(r, input)
	if !result.IsCommand || result.CommandName == "" {
		return nil
	}
	if result.Command == nil {
		return &UnknownCommandError{
			Name:        result.CommandName,
			Suggestions: r.Suggest(result.CommandName),
		}
	}

	log.Debug("executing command", "command", result.Command.Name, "args", len(result.Args))
	return result.Command.Handler(ctx, env, result.Args)
}
