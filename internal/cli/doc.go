// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the chatnexus command line and the interactive chat
// REPL.
//
// # Key Types
//
//   - app: configuration, Ollama client and model catalog shared by commands
//   - chatSession: the REPL wiring input, slash commands and the session loop
//   - terminalSink: writes answer text and thinking panels to the terminal
//   - terminalUI: renders slash command output
//
// # Usage
//
//	os.Exit(cli.Execute())
//
// # Commands Overview
//
//   - chatnexus: interactive chat (default)
//   - models: list installed models
//   - pull <name>: download a model
//   - version: print version information
//   - doctor: check the config, the server and installed models
//
// Global flags: --model/-m, --host, --config, --verbose/-v, --quiet/-q,
// --no-color.
package cli
