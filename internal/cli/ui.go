// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/chatnexus/internal/commands"
	"github.com/jeranaias/chatnexus/internal/config"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/session"
	"github.com/jeranaias/chatnexus/internal/ui/styles"
	"github.com/jeranaias/chatnexus/internal/util"
)

// errNoInput is returned by Prompt when there is no interactive input.
var errNoInput = errors.New("interactive input not available")

// prompter reads one line of input.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// terminalUI renders command output. It implements commands.UI.
type terminalUI struct {
	out     io.Writer
	input   prompter
	width   int
	animate bool // download progress may redraw in place

	markdown bool
	renderer *glamour.TermRenderer
}

func newTerminalUI(out io.Writer, input prompter) *terminalUI {
	return &terminalUI{
		out:      out,
		input:    input,
		width:    GetTerminalWidth(),
		animate:  IsStdoutTTY(),
		markdown: IsStdoutTTY(),
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

func (u *terminalUI) Prompt(label, def string) (string, error) {
	if u.input == nil {
		return "", errNoInput
	}
	prompt := label + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, def)
	}
	answer, err := u.input.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if answer = strings.TrimSpace(answer); answer == "" {
		return def, nil
	}
	return answer, nil
}

func (u *terminalUI) Info(msg string) {
	fmt.Fprintln(u.out, RenderStatus(InfoStyle, styles.StatusIndicators.Info, msg))
}

func (u *terminalUI) Warn(msg string) {
	fmt.Fprintln(u.out, RenderStatus(WarningStyle, styles.StatusIndicators.Warning, msg))
}

func (u *terminalUI) Success(msg string) {
	fmt.Fprintln(u.out, RenderStatus(SuccessStyle, styles.StatusIndicators.Success, msg))
}

func (u *terminalUI) Error(err error) {
	DisplayError(u.out, err)
}

// =============================================================================
// LISTINGS
// =============================================================================

// ShowModels prints a numbered model table. The active model is marked.
func (u *terminalUI) ShowModels(title string, list []models.Model, active string) {
	nameWidth := 0
	for _, m := range list {
		nameWidth = max(nameWidth, util.StringWidth(m.Name))
	}

	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, RenderHeading(title))
	for i, m := range list {
		name := util.PadRight(m.Name, nameWidth)
		if m.Name == active {
			name = CommandStyle.Render(name)
		}
		line := fmt.Sprintf("  %2d. %s  %7.1f GB", i+1, name, m.SizeGB())
		if m.ParameterSize != "" {
			line += "  " + LabelStyle.Render(m.ParameterSize)
		}
		if m.Family != "" {
			line += "  " + DimStyle.Render(m.Family)
		}
		if m.Name == active {
			line += "  " + SuccessStyle.Render("(current)")
		}
		fmt.Fprintln(u.out, line)
	}
	fmt.Fprintln(u.out)
}

// ShowHistory prints the conversation. Assistant turns are rendered as
// markdown when stdout is a terminal.
func (u *terminalUI) ShowHistory(turns []session.Turn) {
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, RenderHeading("Conversation History"))
	for i, t := range turns {
		label := lipgloss.NewStyle().Foreground(styles.RoleColor(string(t.Role))).Bold(true).Render(roleLabel(t.Role))
		fmt.Fprintf(u.out, "\n%d. %s\n", i+1, label)
		if t.Role == session.RoleAssistant {
			fmt.Fprintln(u.out, strings.TrimRight(u.renderMarkdown(t.Content), "\n"))
			continue
		}
		fmt.Fprintln(u.out, util.TruncateWidth(util.OneLine(t.Content), u.width-4))
	}
	fmt.Fprintln(u.out)
}

func roleLabel(role session.Role) string {
	switch role {
	case session.RoleUser:
		return "You"
	case session.RoleAssistant:
		return "Assistant"
	case session.RoleSystem:
		return "System"
	}
	return string(role)
}

// renderMarkdown renders content with glamour, falling back to the raw text.
func (u *terminalUI) renderMarkdown(content string) string {
	if !u.markdown {
		return content
	}
	if u.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(min(u.width-4, MaxPanelWidth)),
		)
		if err != nil {
			log.Debug("markdown renderer unavailable", "err", err)
			u.markdown = false
			return content
		}
		u.renderer = r
	}
	rendered, err := u.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// ShowSettings prints every setting with its current value.
func (u *terminalUI) ShowSettings(cfg *config.Config) {
	settings := config.Settings()
	keyWidth := 0
	for _, s := range settings {
		keyWidth = max(keyWidth, len(s.Key))
	}

	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, RenderHeading("Settings"))
	for _, s := range settings {
		value, err := cfg.Get(s.Key)
		if err != nil {
			continue
		}
		if value == "" {
			value = DimStyle.Render("(not set)")
		} else {
			value = ValueStyle.Render(value)
		}
		fmt.Fprintf(u.out, "  %s  %s\n", CommandStyle.Render(util.PadRight(s.Key, keyWidth)), value)
		fmt.Fprintf(u.out, "  %s  %s\n", strings.Repeat(" ", keyWidth), DimStyle.Render(s.Description))
	}
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, DimStyle.Render("Change a setting with /settings <key> <value>"))
	fmt.Fprintln(u.out)
}

// ShowHelp prints the command table.
func (u *terminalUI) ShowHelp(cmds []*commands.Command) {
	usageWidth := 0
	for _, c := range cmds {
		usageWidth = max(usageWidth, len(c.Usage))
	}

	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, RenderHeading("Available Commands"))
	for _, c := range cmds {
		line := fmt.Sprintf("  %s  %s", CommandStyle.Render(util.PadRight(c.Usage, usageWidth)), c.Description)
		if len(c.Aliases) > 0 {
			line += " " + DimStyle.Render("("+strings.Join(c.Aliases, ", ")+")")
		}
		fmt.Fprintln(u.out, line)
	}
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, DimStyle.Render("Tip: Ctrl+C stops a reply and exits, Ctrl+D exits, Tab completes commands"))
	fmt.Fprintln(u.out)
}

// =============================================================================
// DOWNLOADS
// =============================================================================

func (u *terminalUI) Pull(ctx context.Context, name string, run func(report func(ollama.PullProgress) error) error) error {
	return runPullProgress(ctx, u.out, u.animate, name, run)
}
