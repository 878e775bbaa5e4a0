// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Loop.
var (
	// ErrInterrupted means the caller cancelled the turn, e.g. with Ctrl+C.
	// Unlike a BackendError it is not something to retry.
	ErrInterrupted = errors.New("turn interrupted")

	// ErrBusy is returned when a turn is started while another is running.
	ErrBusy = errors.New("a turn is already in progress")

	// ErrNoModel is returned when no model has been selected.
	ErrNoModel = errors.New("no model selected")
)

// BackendErrorKind tells where in the turn the backend failed.
type BackendErrorKind int

const (
	// BackendOpen means the stream could not be opened.
	BackendOpen BackendErrorKind = iota
	// BackendStream means the stream broke after fragments had arrived.
	BackendStream
	// BackendTimeout means no fragment arrived within the idle timeout.
	BackendTimeout
)

func (k BackendErrorKind) String() string {
	switch k {
	case BackendOpen:
		return "open"
	case BackendStream:
		return "stream"
	case BackendTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// BackendError reports a failed model call. The partial answer of the turn
// has already been discarded when this is returned.
type BackendError struct {
	Kind  BackendErrorKind
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	switch e.Kind {
	case BackendTimeout:
		return fmt.Sprintf("model %s stopped responding: %v", e.Model, e.Err)
	case BackendStream:
		return fmt.Sprintf("response from %s was interrupted: %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("could not reach model %s: %v", e.Model, e.Err)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// timeouter is implemented by errors that know whether they were caused by a
// timeout, such as net.Error and ollama.ClientError.
type timeouter interface {
	Timeout() bool
}

func classify(model string, err error, received bool) *BackendError {
	kind := BackendOpen
	if received {
		kind = BackendStream
	}
	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		kind = BackendTimeout
	}
	return &BackendError{Kind: kind, Model: model, Err: err}
}
