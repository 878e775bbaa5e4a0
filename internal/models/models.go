// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/chatnexus/internal/ollama"
	"github.com/jeranaias/chatnexus/internal/util"
)

// maxSuggestions is how many installed names a failed download suggests.
const maxSuggestions = 2

// =============================================================================
// TYPES
// =============================================================================

// Model is an installed model.
type Model struct {
	Name          string
	Size          int64 // bytes
	ParameterSize string
	Family        string
	Quantization  string
}

// SizeGB returns the size in decimal gigabytes.
func (m Model) SizeGB() float64 {
	return float64(m.Size) / 1e9
}

// Label returns the name with the parameter size, e.g. "llama3:8b (8.0B)".
func (m Model) Label() string {
	if m.ParameterSize == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.ParameterSize)
}

// Backend is the part of the Ollama client the catalog needs.
type Backend interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	PullModel(ctx context.Context, name string, onProgress func(ollama.PullProgress) error) error
}

// =============================================================================
// ERRORS
// =============================================================================

// ValidationError reports a model name that cannot be used.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid model name: " + e.Reason
}

// SelectionError reports a menu choice that does not name a model.
type SelectionError struct {
	Input string
	Count int
}

func (e *SelectionError) Error() string {
	if _, err := strconv.Atoi(e.Input); err != nil {
		return fmt.Sprintf("'%s' is not a number", e.Input)
	}
	return fmt.Sprintf("invalid selection %s, choose 1-%d", e.Input, e.Count)
}

// NotFoundError reports a model the registry does not have.
type NotFoundError struct {
	Name        string
	Suggestions []string // close matches among installed models
	Err         error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model '%s' not found in registry", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// =============================================================================
// VALIDATION AND SELECTION
// =============================================================================

// NamespaceHint is shown for names without an author prefix.
const NamespaceHint = "Use format 'author/modelname' for better results"

// Validate trims and lower-cases a model name. An empty name is a
// *ValidationError. A name without '/' is accepted, but the returned hint
// suggests the author/modelname form.
func Validate(raw string) (name, hint string, err error) {
	name = cases.Lower(language.Und).String(strings.TrimSpace(raw))
	if name == "" {
		return "", "", &ValidationError{Input: raw, Reason: "model name cannot be empty"}
	}
	if !strings.Contains(name, "/") {
		hint = NamespaceHint
	}
	return name, hint, nil
}

// Pick resolves a 1-based menu choice. An empty choice selects the first
// model.
func Pick(models []Model, choice string) (Model, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		choice = "1"
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(models) {
		return Model{}, &SelectionError{Input: choice, Count: len(models)}
	}
	return models[n-1], nil
}

// Names returns the model names in order.
func Names(models []Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

// Find returns the installed model with the given name. A name without a
// tag also matches its ":latest" variant.
func Find(models []Model, name string) (Model, bool) {
	for _, m := range models {
		if m.Name == name || m.Name == name+":latest" {
			return m, true
		}
	}
	return Model{}, false
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog lists and downloads models through a Backend.
type Catalog struct {
	backend Backend
}

// NewCatalog creates a Catalog.
func NewCatalog(backend Backend) *Catalog {
	return &Catalog{backend: backend}
}

// Installed returns the installed models in server order.
func (c *Catalog) Installed(ctx context.Context) ([]Model, error) {
	infos, err := c.backend.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}

	models := make([]Model, 0, len(infos))
	for _, info := range infos {
		if info.Name == "" {
			continue
		}
		models = append(models, Model{
			Name:          info.Name,
			Size:          info.Size,
			ParameterSize: info.Details.ParameterSize,
			Family:        info.Details.Family,
			Quantization:  info.Details.QuantizationLevel,
		})
	}
	return models, nil
}

// Download validates name and pulls it, returning the normalized name. When
// the registry does not know the model the error is a *NotFoundError with
// up to two similar installed names.
func (c *Catalog) Download(ctx context.Context, name string, onProgress func(ollama.PullProgress) error) (string, error) {
	name, _, err := Validate(name)
	if err != nil {
		return "", err
	}

	log.Info("downloading model", "model", name)
	err = c.backend.PullModel(ctx, name, onProgress)
	if err == nil {
		return name, nil
	}
	if !ollama.IsModelNotFound(err) {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}

	nf := &NotFoundError{Name: name, Err: err}
	if installed, listErr := c.Installed(ctx); listErr == nil {
		nf.Suggestions = util.Suggest(name, Names(installed), maxSuggestions)
	} else {
		log.Debug("could not list models for suggestions", "err", listErr)
	}
	return "", nf
}
