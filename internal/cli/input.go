// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatnexus/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides line editing, tab completion and persisted input
// history for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

// newLineReader creates a reader and loads history from historyFile. An
// empty historyFile disables persistence.
func newLineReader(historyFile string, complete func(string) []string) *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetCompleter(complete)
	}

	r := &lineReader{line: line, historyFile: historyFile}
	r.loadHistory()
	return r
}

func (r *lineReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := r.line.ReadHistory(f); err != nil {
		log.Debug("could not read input history", "path", r.historyFile, "err", err)
	}
}

// ReadLine reads a chat line. Non-empty lines are added to the history.
func (r *lineReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Prompt reads an answer to a question without recording it.
func (r *lineReader) Prompt(prompt string) (string, error) {
	return r.line.Prompt(prompt)
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *lineReader) Close() error {
	if r.historyFile != "" {
		var buf bytes.Buffer
		if _, err := r.line.WriteHistory(&buf); err == nil {
			if err := util.AtomicWriteFile(r.historyFile, buf.Bytes(), 0o600); err != nil {
				log.Warn("could not save input history", "path", r.historyFile, "err", err)
			}
		}
	}
	return r.line.Close()
}
