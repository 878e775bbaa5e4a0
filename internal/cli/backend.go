// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/session"
)

// ollamaBackend streams session turns through the Ollama client and keeps
// the stats of the most recent stream.
type ollamaBackend struct {
	client *ollama.Client
	last   *ollama.StreamStats
}

func newOllamaBackend(client *ollama.Client) *ollamaBackend {
	return &ollamaBackend{client: client}
}

// Stream implements session.Backend.
func (b *ollamaBackend) Stream(ctx context.Context, req session.Request, onFragment func(string) error) error {
	messages := make([]ollama.Message, 0, len(req.Turns)+1)
	if req.System != "" {
		messages = append(messages, ollama.NewSystemMessage(req.System))
	}
	for _, t := range req.Turns {
		messages = append(messages, ollama.Message{Role: string(t.Role), Content: t.Content})
	}

	stats := ollama.NewStreamStats()
	b.last = stats
	return b.client.ChatStream(ctx, req.Model, messages, func(chunk ollama.StreamChunk) error {
		stats.Add(chunk)
		if chunk.Content == "" {
			return nil
		}
		return onFragment(chunk.Content)
	})
}

// LastStats returns the stats of the last stream, or nil before the first.
func (b *ollamaBackend) LastStats() *ollama.StreamStats {
	return b.last
}
