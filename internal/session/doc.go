// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one conversation with a model backend.
//
// # Key Types
//
//   - Loop: runs one turn at a time against a Backend
//   - History: append-only record of completed turns
//   - Backend: opens a streaming chat and yields text fragments
//   - Sink: receives answer text and completed reasoning segments
//   - BackendError: a turn failed because the stream could not be opened,
//     broke mid-way, or went idle for too long
//
// # Usage
//
//	loop := session.NewLoop(backend, sink, session.Options{})
//	loop.SetModel("qwen3:8b")
//	answer, err := loop.Send(ctx, "Why is the sky blue?")
//	var backendErr *session.BackendError
//	switch {
//	case errors.Is(err, session.ErrInterrupted):
//	    // user pressed Ctrl+C
//	case errors.As(err, &backendErr):
//	    // offer to clear history and retry
//	}
//
// Each turn gets its own think.Classifier, so a reasoning segment left open
// by one response never leaks into the next.
package session
