// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// terminalSink writes answer text straight to the transcript and each
// reasoning segment as a thinking panel. It implements session.Sink.
type terminalSink struct {
	out          io.Writer
	showThinking bool
	width        func() int

	mu          sync.Mutex
	waiting     func() // stops the waiting indicator; nil when none runs
	atLineStart bool
	wrote       bool
}

func newTerminalSink(out io.Writer, showThinking bool) *terminalSink {
	return &terminalSink{
		out:          out,
		showThinking: showThinking,
		width:        panelWidth,
		atLineStart:  true,
	}
}

// begin prepares the sink for a new turn. stop is called before the first
// output of the turn.
func (s *terminalSink) begin(stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiting = stop
	s.wrote = false
}

// finish stops the waiting indicator if nothing was shown and ends the
// transcript line.
func (s *terminalSink) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWaiting()
	if !s.atLineStart {
		fmt.Fprintln(s.out)
		s.atLineStart = true
	}
}

// setShowThinking toggles the thinking panel for later segments.
func (s *terminalSink) setShowThinking(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showThinking = show
}

func (s *terminalSink) stopWaiting() {
	if s.waiting != nil {
		s.waiting()
		s.waiting = nil
	}
}

// Answer writes answer text as it arrives.
func (s *terminalSink) Answer(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWaiting()
	if !s.wrote {
		// Model replies usually open with blank lines after a reasoning block.
		text = strings.TrimLeft(text, "\n")
		if text == "" {
			return
		}
	}
	fmt.Fprint(s.out, text)
	s.wrote = true
	s.atLineStart = strings.HasSuffix(text, "\n")
}

// Reasoning renders a completed reasoning segment.
func (s *terminalSink) Reasoning(segment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.showThinking {
		return
	}
	s.stopWaiting()
	if !s.atLineStart {
		fmt.Fprintln(s.out)
	}
	fmt.Fprintln(s.out, RenderThinking(segment, s.width()))
	s.atLineStart = true
}
