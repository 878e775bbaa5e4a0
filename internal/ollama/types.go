// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ollama/ollama/api"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Message is a chat message in the conversation.
type Message struct {
	Role    string // "user", "assistant" or "system"
	Content string
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

func toAPIMessages(msgs []Message) []api.Message {
	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo describes an installed model.
type ModelInfo struct {
	Name       string
	ModifiedAt time.Time
	Size       int64
	Digest     string
	Details    ModelDetails
}

// ModelDetails contains detailed information about a model.
type ModelDetails struct {
	Format            string
	Family            string
	ParameterSize     string
	QuantizationLevel string
}

// FormatSize formats the model size in decimal units, e.g. "4.7 GB".
func (m ModelInfo) FormatSize() string {
	return humanize.Bytes(uint64(max(m.Size, 0)))
}

func modelFromAPI(m api.ListModelResponse) ModelInfo {
	return ModelInfo{
		Name:       m.Name,
		ModifiedAt: m.ModifiedAt,
		Size:       m.Size,
		Digest:     m.Digest,
		Details:    detailsFromAPI(m.Details),
	}
}

func detailsFromAPI(d api.ModelDetails) ModelDetails {
	return ModelDetails{
		Format:            d.Format,
		Family:            d.Family,
		ParameterSize:     d.ParameterSize,
		QuantizationLevel: d.QuantizationLevel,
	}
}

// PullProgress is one progress update of a model download.
type PullProgress struct {
	Status    string
	Digest    string
	Total     int64
	Completed int64
}

// Fraction returns the completed share of the current layer in [0, 1].
// It is 0 when the total is unknown.
func (p PullProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	return min(max(f, 0), 1)
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single chunk from a streaming response.
type StreamChunk struct {
	// Content from this chunk.
	Content string

	Model      string
	Done       bool
	DoneReason string

	// Timing and token counts, only populated on the final chunk.
	TotalDuration      time.Duration
	LoadDuration       time.Duration
	PromptEvalDuration time.Duration
	EvalDuration       time.Duration
	PromptTokens       int
	CompletionTokens   int
}

func chunkFromAPI(resp api.ChatResponse) StreamChunk {
	chunk := StreamChunk{
		Content:    resp.Message.Content,
		Model:      resp.Model,
		Done:       resp.Done,
		DoneReason: resp.DoneReason,
	}
	if resp.Done {
		chunk.TotalDuration = resp.TotalDuration
		chunk.LoadDuration = resp.LoadDuration
		chunk.PromptEvalDuration = resp.PromptEvalDuration
		chunk.EvalDuration = resp.EvalDuration
		chunk.PromptTokens = resp.PromptEvalCount
		chunk.CompletionTokens = resp.EvalCount
	}
	return chunk
}
