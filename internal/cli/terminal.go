// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the chat REPL.
//
// Decides whether stdout gets colours and markdown, whether the waiting
// spinner and download progress can animate on stderr, and how wide the
// thinking panel may be.

package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY returns true if stderr is a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40

	// MaxPanelWidth caps the thinking panel on very wide terminals
	MaxPanelWidth = 100
)

// GetTerminalWidth returns the current terminal width, or
// DefaultTerminalWidth if it cannot be determined.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// panelWidth is the outer width for bordered output.
func panelWidth() int {
	return min(GetTerminalWidth()-2, MaxPanelWidth)
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// colorsDisabled reports whether colour must be off regardless of the
// terminal. See https://no-color.org/ for NO_COLOR.
func colorsDisabled(noColor bool) bool {
	return noColor || os.Getenv("NO_COLOR") != ""
}

// ColorProfile returns the termenv profile for stdout. FORCE_COLOR keeps
// colours on when stdout is piped.
func ColorProfile(noColor bool) termenv.Profile {
	switch {
	case colorsDisabled(noColor):
		return termenv.Ascii
	case os.Getenv("FORCE_COLOR") != "":
		return termenv.ANSI256
	case !IsStdoutTTY():
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// ConfigureColor applies the colour decision to every lipgloss style.
func ConfigureColor(noColor bool) {
	lipgloss.SetColorProfile(ColorProfile(noColor))
}
