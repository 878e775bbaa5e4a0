// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error display and exit codes for chatnexus.
//
// Commands always return errors; Execute displays them once and maps them
// to an exit code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/chatnexus/internal/commands"
	"github.com/jeranaias/chatnexus/internal/models"
	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/session"
	"github.com/jeranaias/chatnexus/internal/ui/styles"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the Ollama server could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a model was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitInterrupted indicates the user pressed Ctrl+C
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ConfigError reports a configuration file that could not be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UsageError reports invalid flags or arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes a formatted error line to w.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, RenderStatus(ErrorStyle, styles.StatusIndicators.Error, err.Error()))
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error returned by a command.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usageErr    *UsageError
		cmdUsageErr *commands.UsageError
		validation  *models.ValidationError
		configErr   *ConfigError
		notFound    *models.NotFoundError
		backendErr  *session.BackendError
	)
	switch {
	case errors.Is(err, session.ErrInterrupted):
		return ExitInterrupted
	case errors.As(err, &usageErr), errors.As(err, &cmdUsageErr), errors.As(err, &validation):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &notFound), ollama.IsModelNotFound(err):
		return ExitNotFoundError
	case ollama.IsTimeout(err):
		return ExitTimeoutError
	case errors.As(err, &backendErr) && backendErr.Kind == session.BackendTimeout:
		return ExitTimeoutError
	case ollama.IsNotRunning(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}
