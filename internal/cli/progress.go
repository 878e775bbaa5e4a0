// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/ui/styles"
)

// progressInterval is the minimum time between redraws of a download.
const progressInterval = 100 * time.Millisecond

// =============================================================================
// PULL PROGRESS MODEL
// =============================================================================

type pullProgressMsg ollama.PullProgress

type pullDoneMsg struct{ err error }

// pullModel renders the state of one model download.
type pullModel struct {
	name     string
	spinner  spinner.Model
	bar      progress.Model
	progress ollama.PullProgress
	done     bool
	err      error
}

func newPullModel(name string) pullModel {
	return pullModel{
		name: name,
		spinner: spinner.New(
			spinner.WithSpinner(styles.DotsSpinner),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Cyan)),
		),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
		),
	}
}

func (m pullModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m pullModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pullProgressMsg:
		m.progress = ollama.PullProgress(msg)
		return m, nil
	case pullDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m pullModel) View() string {
	if m.done {
		return ""
	}
	status := m.progress.Status
	if status == "" {
		status = "starting"
	}
	line := fmt.Sprintf("%s %s %s", m.spinner.View(), CommandStyle.Render(m.name), DimStyle.Render(status))
	if m.progress.Total > 0 {
		line += fmt.Sprintf("\n  %s %s / %s",
			m.bar.ViewAs(m.progress.Fraction()),
			humanize.Bytes(uint64(m.progress.Completed)),
			humanize.Bytes(uint64(m.progress.Total)))
	}
	return line
}

// =============================================================================
// RUNNING A PULL
// =============================================================================

// progressThrottle forwards progress reports to send. A report with a new
// status always passes; others pass only when limiter allows.
type progressThrottle struct {
	limiter    *rate.Limiter
	lastStatus string
	send       func(ollama.PullProgress)
}

func newProgressThrottle(limiter *rate.Limiter, send func(ollama.PullProgress)) *progressThrottle {
	return &progressThrottle{limiter: limiter, send: send}
}

func (t *progressThrottle) report(p ollama.PullProgress) {
	changed := p.Status != t.lastStatus
	if !changed && !t.limiter.Allow() {
		return
	}
	t.lastStatus = p.Status
	t.send(p)
}

// runPullProgress runs a download while animating its progress on out.
// When animate is false, only status changes are written as plain lines.
func runPullProgress(ctx context.Context, out io.Writer, animate bool, name string, run func(report func(ollama.PullProgress) error) error) error {
	if !animate {
		// A zero limiter never allows, so only status changes are printed.
		throttle := newProgressThrottle(rate.NewLimiter(0, 0), func(p ollama.PullProgress) {
			fmt.Fprintf(out, "%s: %s\n", name, p.Status)
		})
		return run(func(p ollama.PullProgress) error {
			throttle.report(p)
			return ctx.Err()
		})
	}

	p := tea.NewProgram(newPullModel(name),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			log.Debug("progress display failed", "err", err)
		}
	}()

	limiter := rate.NewLimiter(rate.Every(progressInterval), 1)
	throttle := newProgressThrottle(limiter, func(pp ollama.PullProgress) {
		p.Send(pullProgressMsg(pp))
	})
	err := run(func(pp ollama.PullProgress) error {
		throttle.report(pp)
		return ctx.Err()
	})
	p.Send(pullDoneMsg{err: err})
	<-done
	return err
}
