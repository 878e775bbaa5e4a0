// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is the client for a local Ollama server.
//
// It wraps github.com/ollama/ollama/api with the pieces a terminal chat
// needs: typed errors, model listing and pulling, and a streaming chat call
// guarded by an idle timeout so a stalled model cannot hang the session.
//
// # Usage
//
//	client, err := ollama.NewClientWithConfig(ollama.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	err = client.ChatStream(ctx, "qwen3:8b", []ollama.Message{
//	    ollama.NewUserMessage("Hello"),
//	}, func(chunk ollama.StreamChunk) error {
//	    fmt.Print(chunk.Content)
//	    return nil
//	})
//
// # Errors
//
// Failures are returned as *ClientError. Use IsNotRunning, IsTimeout and
// IsModelNotFound, or errors.Is against the sentinel values, to tell them
// apart. Cancelling the caller's context returns the context error unchanged.
package ollama
