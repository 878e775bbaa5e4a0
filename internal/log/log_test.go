// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want log.Level
	}{
		{"default", Options{}, log.WarnLevel},
		{"verbose", Options{Verbose: true}, log.DebugLevel},
		{"quiet", Options{Quiet: true}, log.ErrorLevel},
		{"quiet wins", Options{Quiet: true, Verbose: true}, log.ErrorLevel},
		{"configured", Options{Level: "INFO"}, log.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			restoreDefault(t)

			closer, err := Setup(tc.opts)
			require.NoError(t, err)
			defer closer.Close()

			assert.Equal(t, tc.want, log.GetLevel())
		})
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreDefault(t)

	_, err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestSetup_File(t *testing.T) {
	restoreDefault(t)
	path := filepath.Join(t.TempDir(), "logs", "chatnexus.log")

	closer, err := Setup(Options{Verbose: true, File: path})
	require.NoError(t, err)

	log.Debug("turn complete", "model", "qwen3")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "turn complete")
	assert.Contains(t, string(data), "model=qwen3")
}
