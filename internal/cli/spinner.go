// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/chatnexus/internal/ui/styles"
)

// =============================================================================
// WAITING INDICATOR
// =============================================================================

// stopWaitMsg ends the waiting indicator.
type stopWaitMsg struct{}

// waitModel shows a spinner and a label until it receives stopWaitMsg.
type waitModel struct {
	spinner spinner.Model
	label   string
	stopped bool
}

func newWaitModel(label string) waitModel {
	s := spinner.New(
		spinner.WithSpinner(styles.LineSpinner),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Purple)),
	)
	return waitModel{spinner: s, label: label}
}

func (m waitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopWaitMsg:
		m.stopped = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View clears the line once stopped so the answer starts on a clean line.
func (m waitModel) View() string {
	if m.stopped {
		return ""
	}
	return m.spinner.View() + " " + DimStyle.Render(m.label)
}

// startWaiting animates a spinner on out until the returned function is
// called. The stop function blocks until the line is cleared and is safe
// to call more than once.
func startWaiting(out io.Writer, label string) func() {
	p := tea.NewProgram(newWaitModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			log.Debug("waiting indicator failed", "err", err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.Send(stopWaitMsg{})
			<-done
		})
	}
}
