// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Health checks for a chatnexus setup.
//
// Command: doctor
// Short:   Check the config, the Ollama server and installed models
// Aliases: diag
//
// Health Checks Performed:
//  1. Config Valid      - The config file loaded and validated
//  2. Ollama Running    - The server answers a version request
//  3. Models Installed  - At least one model is installed
//  4. Default Model     - The configured default model is installed
//  5. Config Writable   - Settings and input history can be saved
//
// Exit Codes:
//
//	0   No check failed
//	1   One or more checks failed

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatnexus/internal/ollama"
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the styled indicator for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return SuccessStyle.Render("[OK]")
	case CheckWarn:
		return WarningStyle.Render("[!!]")
	case CheckFail:
		return ErrorStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), ValueStyle.Render(c.Message))
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + DimStyle.Render("     -> "+c.Fix)
	}
	return result
}

// =============================================================================
// COMMAND
// =============================================================================

func newDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag"},
		Short:   "Check the config, the Ollama server and installed models",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := runAllChecks(cmd.Context(), a)
			return reportChecks(cmd.OutOrStdout(), checks)
		},
	}
}

// reportChecks prints the results and returns an error if any check failed.
func reportChecks(out io.Writer, checks []*HealthCheck) error {
	var passed, warned, failed int
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, RenderHeading("chatnexus doctor"))
	for _, check := range checks {
		fmt.Fprintln(out, check.Render())
	}
	fmt.Fprintln(out)

	summary := []string{fmt.Sprintf("%d passed", passed)}
	if warned > 0 {
		summary = append(summary, WarningStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summary = append(summary, ErrorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintln(out, DimStyle.Render(strings.Join(summary, ", ")))
	fmt.Fprintln(out)

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}
	return nil
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks runs every check in order. Model checks are skipped when the
// server cannot be reached.
func runAllChecks(ctx context.Context, a *app) []*HealthCheck {
	checks := []*HealthCheck{checkConfigValid(a)}

	running := checkOllamaRunning(ctx, a.client)
	checks = append(checks, running)
	if running.Status == CheckPass {
		checks = append(checks, checkModelsInstalled(ctx, a))
		if a.cfg.DefaultModel != "" {
			checks = append(checks, checkDefaultModel(ctx, a.client, a.cfg.DefaultModel))
		}
	}

	return append(checks, checkConfigWritable(filepath.Dir(a.configPath)))
}

func checkConfigValid(a *app) *HealthCheck {
	check := &HealthCheck{Name: "Config Valid"}
	if _, err := os.Stat(a.configPath); err != nil {
		check.Status = CheckPass
		check.Message = "Using default settings (no config file)"
		return check
	}
	check.Status = CheckPass
	check.Message = "Config loaded from " + a.configPath
	return check
}

func checkOllamaRunning(ctx context.Context, client *ollama.Client) *HealthCheck {
	check := &HealthCheck{Name: "Ollama Running"}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	version, err := client.Version(ctx)
	if err != nil {
		check.Status = CheckFail
		check.Message = "Ollama not reachable at " + client.BaseURL()
		check.Fix = "Run: ollama serve (or set --host / OLLAMA_HOST)"
		return check
	}
	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama %s running at %s", version, client.BaseURL())
	return check
}

func checkModelsInstalled(ctx context.Context, a *app) *HealthCheck {
	check := &HealthCheck{Name: "Models Installed"}

	list, err := a.catalog.Installed(ctx)
	switch {
	case err != nil:
		check.Status = CheckFail
		check.Message = "Could not list models: " + err.Error()
	case len(list) == 0:
		check.Status = CheckWarn
		check.Message = "No models installed"
		check.Fix = "Run: chatnexus pull <name>"
	default:
		check.Status = CheckPass
		check.Message = fmt.Sprintf("%d model(s) installed", len(list))
	}
	return check
}

func checkDefaultModel(ctx context.Context, client *ollama.Client, name string) *HealthCheck {
	check := &HealthCheck{Name: "Default Model"}

	details, err := client.GetModel(ctx, name)
	switch {
	case ollama.IsModelNotFound(err):
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Default model %s is not installed", name)
		check.Fix = "Run: chatnexus pull " + name
	case err != nil:
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not inspect %s: %v", name, err)
	default:
		check.Status = CheckPass
		check.Message = fmt.Sprintf("Default model %s (%s %s)", name, details.Family, details.ParameterSize)
	}
	return check
}

func checkConfigWritable(dir string) *HealthCheck {
	check := &HealthCheck{Name: "Config Writable"}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		check.Status = CheckWarn
		check.Message = "Cannot create " + dir
		check.Fix = "Settings and input history will not be saved"
		return check
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		check.Status = CheckWarn
		check.Message = dir + " is not writable"
		check.Fix = "Settings and input history will not be saved"
		return check
	}
	f.Close()
	os.Remove(f.Name())

	check.Status = CheckPass
	check.Message = dir + " is writable"
	return check
}
