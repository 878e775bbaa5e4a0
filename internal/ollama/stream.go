// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ollama/ollama/api"
)

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamCallback is called for each chunk received during streaming.
// Returning an error aborts the stream with that error.
type StreamCallback func(chunk StreamChunk) error

// ChatStream sends a streaming chat request and calls the callback for each
// chunk, synchronously and in arrival order. It returns when the stream is
// complete or fails.
//
// If no chunk arrives for StreamIdleTimeout the request is cancelled and a
// timeout *ClientError is returned. If ctx is cancelled, ctx.Err() is
// returned.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, callback StreamCallback) error {
	stream := true
	req := &api.ChatRequest{
		Model:    model,
		Messages: toAPIMessages(messages),
		Stream:   &stream,
		Options:  c.config.Options,
	}

	idle := c.config.StreamIdleTimeout
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		idled atomic.Bool
		cbErr error
	)
	watchdog := time.AfterFunc(idle, func() {
		idled.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	err := c.api.Chat(streamCtx, req, func(resp api.ChatResponse) error {
		watchdog.Reset(idle)
		if callback == nil {
			return nil
		}
		cbErr = callback(chunkFromAPI(resp))
		return cbErr
	})
	if err == nil {
		return nil
	}

	switch {
	case cbErr != nil:
		return cbErr
	case ctx.Err() != nil:
		return ctx.Err()
	case idled.Load():
		log.Debug("chat stream idle", "model", model, "timeout", idle)
		return &ClientError{
			Type:    ErrTypeTimeout,
			Message: fmt.Sprintf("no response from %s for %s", model, idle),
		}
	}
	return wrapError("chat", err)
}

// =============================================================================
// STREAM STATISTICS
// =============================================================================

// StreamStats holds statistics collected during streaming.
type StreamStats struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	// Durations reported by Ollama
	TotalDuration      time.Duration
	LoadDuration       time.Duration
	PromptEvalDuration time.Duration
	EvalDuration       time.Duration

	PromptTokens     int
	CompletionTokens int

	TTFT            time.Duration // Time to first token
	TokensPerSecond float64
}

// NewStreamStats creates a new StreamStats with start time set.
func NewStreamStats() *StreamStats {
	return &StreamStats{StartTime: time.Now()}
}

// Add records a chunk: the first one with content sets the TTFT and the
// final one fills in the server-side figures.
func (s *StreamStats) Add(chunk StreamChunk) {
	if chunk.Content != "" && s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
	if chunk.Done {
		s.finalize(chunk)
	}
}

func (s *StreamStats) finalize(chunk StreamChunk) {
	s.EndTime = time.Now()
	s.TotalDuration = chunk.TotalDuration
	s.LoadDuration = chunk.LoadDuration
	s.PromptEvalDuration = chunk.PromptEvalDuration
	s.EvalDuration = chunk.EvalDuration
	s.PromptTokens = chunk.PromptTokens
	s.CompletionTokens = chunk.CompletionTokens

	if s.EvalDuration > 0 {
		s.TokensPerSecond = float64(s.CompletionTokens) / s.EvalDuration.Seconds()
	}
}

// Complete reports whether the final chunk has been seen.
func (s *StreamStats) Complete() bool {
	return !s.EndTime.IsZero()
}

// Format returns a one-line summary such as
// "2.3s | 120 tokens | 52.1 tok/s | TTFT 340ms".
func (s *StreamStats) Format() string {
	return fmt.Sprintf("%s | %d tokens | %.1f tok/s | TTFT %dms",
		formatDuration(s.TotalDuration),
		s.CompletionTokens,
		s.TokensPerSecond,
		s.TTFT.Milliseconds())
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
