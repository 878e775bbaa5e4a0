// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/chatnexus/internal/think"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Request is what the Loop asks the backend for.
type Request struct {
	Model  string
	System string
	Turns  []Turn
}

// Backend opens a streaming chat call. It must invoke onFragment once per
// fragment in arrival order and return when the stream ends. A non-nil error
// from onFragment aborts the stream.
type Backend interface {
	Stream(ctx context.Context, req Request, onFragment func(fragment string) error) error
}

// Sink presents the classified output of a turn.
type Sink interface {
	// Answer receives answer text as soon as it is classified.
	Answer(text string)
	// Reasoning receives each completed, trimmed, non-empty reasoning segment.
	Reasoning(segment string)
}

// Options configure a Loop.
type Options struct {
	// SendHistory sends the previous turns along with the new prompt. When
	// false, only the new prompt is sent and the model has no memory.
	SendHistory bool

	// System is an optional system prompt sent first on every turn.
	System string
}

// Stats summarises a session.
type Stats struct {
	Turns     int
	Failures  int
	StartTime time.Time
}

// =============================================================================
// LOOP
// =============================================================================

// Loop runs conversation turns against a backend, strictly one at a time.
type Loop struct {
	id      string
	backend Backend
	sink    Sink
	opts    Options
	history *History
	model   string
	logger  *log.Logger

	busy  atomic.Bool
	stats Stats
}

// NewLoop creates a Loop with an empty history.
func NewLoop(backend Backend, sink Sink, opts Options) *Loop {
	id := uuid.NewString()
	return &Loop{
		id:      id,
		backend: backend,
		sink:    sink,
		opts:    opts,
		history: NewHistory(),
		logger:  log.With("session", id[:8]),
		stats:   Stats{StartTime: time.Now()},
	}
}

// ID returns the session identifier.
func (l *Loop) ID() string {
	return l.id
}

// Model returns the model turns are sent to.
func (l *Loop) Model() string {
	return l.model
}

// SetModel changes the model used by subsequent turns.
func (l *Loop) SetModel(model string) {
	l.logger.Debug("model selected", "model", model)
	l.model = model
}

// Options returns the current options.
func (l *Loop) Options() Options {
	return l.opts
}

// SetOptions replaces the options used by subsequent turns.
func (l *Loop) SetOptions(opts Options) {
	l.opts = opts
}

// History returns the conversation history.
func (l *Loop) History() *History {
	return l.history
}

// Stats returns session counters.
func (l *Loop) Stats() Stats {
	return l.stats
}

// Send runs a turn and, if it succeeds, records the prompt and the answer in
// the history together.
func (l *Loop) Send(ctx context.Context, userText string) (string, error) {
	answer, err := l.RunTurn(ctx, userText)
	if err != nil {
		return "", err
	}
	l.history.Append(userText, answer)
	return answer, nil
}

// RunTurn streams one response for userText and returns the answer text with
// all reasoning removed. It does not touch the history.
//
// Answer text reaches the sink as it arrives. On failure the partial answer
// is dropped and the error is ErrInterrupted if ctx was cancelled, or a
// *BackendError otherwise.
func (l *Loop) RunTurn(ctx context.Context, userText string) (string, error) {
	if l.model == "" {
		return "", ErrNoModel
	}
	if !l.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer l.busy.Store(false)

	req := Request{
		Model:  l.model,
		System: l.opts.System,
		Turns:  l.requestTurns(userText),
	}

	classifier := think.New()
	var answer strings.Builder
	received := 0
	deliver := func(res think.Result) {
		for _, seg := range res.Segments {
			l.sink.Reasoning(seg)
		}
		if res.Answer != "" {
			l.sink.Answer(res.Answer)
			answer.WriteString(res.Answer)
		}
	}

	start := time.Now()
	l.logger.Debug("turn started", "model", req.Model, "turns", len(req.Turns))

	err := l.backend.Stream(ctx, req, func(fragment string) error {
		received++
		deliver(classifier.Process(fragment))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			l.logger.Debug("turn interrupted", "fragments", received)
			return "", ErrInterrupted
		}
		l.stats.Failures++
		backendErr := classify(req.Model, err, received > 0)
		l.logger.Warn("turn failed", "kind", backendErr.Kind, "fragments", received, "err", err)
		return "", backendErr
	}

	if classifier.State() == think.Reasoning {
		l.logger.Debug("stream ended inside a reasoning segment", "model", req.Model)
	}
	deliver(classifier.Finalize())

	l.stats.Turns++
	l.logger.Debug("turn complete",
		"fragments", received,
		"chars", answer.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return answer.String(), nil
}

func (l *Loop) requestTurns(userText string) []Turn {
	prompt := Turn{Role: RoleUser, Content: userText}
	if !l.opts.SendHistory {
		return []Turn{prompt}
	}
	return append(l.history.Turns(), prompt)
}
