// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for the chat REPL and subcommands.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatnexus/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for the banner and section headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// ValueStyle is used for regular values
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// CommandStyle is used for command names and model names
	CommandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// WarningStyle is used for warnings and hints
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// InfoStyle is used for neutral information
	InfoStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	// DimStyle is used for secondary information such as stats
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// SeparatorStyle is used for horizontal rules
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayDim)
)

// =============================================================================
// THINKING PANEL
// =============================================================================

var (
	thinkingTitleStyle = lipgloss.NewStyle().
				Foreground(styles.Purple).
				Italic(true)

	thinkingBodyStyle = lipgloss.NewStyle().
				Foreground(styles.TextMuted).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(styles.Purple).
				Padding(0, 1)
)

// RenderThinking renders a reasoning segment as a bordered panel no wider
// than width.
func RenderThinking(segment string, width int) string {
	// The border adds two columns.
	body := thinkingBodyStyle.Width(max(width-2, MinTerminalWidth-2)).Render(segment)
	return thinkingTitleStyle.Render("Thinking") + "\n" + body
}

// =============================================================================
// HELPERS
// =============================================================================

// RenderSeparator renders a horizontal rule of the given width.
func RenderSeparator(width int) string {
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

// RenderHeading renders a title with a rule underneath.
func RenderHeading(title string) string {
	return TitleStyle.Render(title) + "\n" + RenderSeparator(lipgloss.Width(title))
}

// RenderStatus renders a prefixed status line.
func RenderStatus(style lipgloss.Style, indicator, msg string) string {
	return style.Render(indicator) + " " + msg
}
