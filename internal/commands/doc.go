// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat REPL.
//
// # Key Types
//
//   - Registry: command registry with the built-in commands
//   - Env: what a handler acts on (session, model catalog, config, UI)
//   - ParseResult: parsed command with name and arguments
//   - Completer: tab completion for command names and arguments
//
// # Built-in Commands
//
//   - /models: list installed models
//   - /download [name]: pull a model and make it current
//   - /switch [name]: change the current model
//   - /settings [key value]: show or change configuration
//   - /history: show the conversation so far
//   - /clear: forget the conversation
//   - /help: show available commands
//   - /exit: leave (returns ErrExit)
//
// # Usage
//
//	registry := commands.NewRegistry()
//	err := registry.Execute(ctx, env, "/switch 2")
//	var unknown *commands.UnknownCommandError
//	if errors.As(err, &unknown) {
//	    fmt.Println("did you mean", unknown.Suggestions)
//	}
package commands
