// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"strings"
)

// ErrExit is returned by /exit. The REPL ends the session when it sees it.
var ErrExit = errors.New("exit requested")

// UnknownCommandError reports a slash command that is not registered.
type UnknownCommandError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	if len(e.Suggestions) == 0 {
		return "unknown command: " + e.Name
	}
	return "unknown command: " + e.Name + ". Did you mean " + strings.Join(e.Suggestions, " or ") + "?"
}

// UsageError reports a command invoked with the wrong arguments.
type UsageError struct {
	Command string
	Usage   string
	Message string
}

func (e *UsageError) Error() string {
	return e.Command + ": " + e.Message + " (usage: " + e.Usage + ")"
}
