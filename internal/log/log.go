// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package log configures structured logging for chatnexus using
// github.com/charmbracelet/log.
//
// Log output is diagnostic only and goes to stderr or a file, never to the
// chat transcript on stdout.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options select the log level and destination.
type Options struct {
	// Verbose enables DEBUG output.
	Verbose bool
	// Quiet limits output to ERROR. It wins over Verbose.
	Quiet bool
	// Level is used when neither flag is set (default "warn").
	Level string
	// File receives output instead of stderr when set.
	File string
}

// Setup configures the default logger:
//
//   - quiet mode:   ERROR only
//   - verbose mode: DEBUG and above
//   - otherwise:    Options.Level, WARN when empty
//
// The returned Closer releases the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	level, err := resolveLevel(opts)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: opts.File != "",
		TimeFormat:      time.RFC3339,
		Prefix:          "chatnexus",
	})
	log.SetDefault(logger)
	return closer, nil
}

func resolveLevel(opts Options) (log.Level, error) {
	switch {
	case opts.Quiet:
		return log.ErrorLevel, nil
	case opts.Verbose:
		return log.DebugLevel, nil
	case opts.Level == "":
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	return level, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
