// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatnexus/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatnexus configuration.
type Config struct {
	// DefaultModel is selected at start-up without showing the menu.
	// Empty means ask.
	DefaultModel string `toml:"default_model"`

	Ollama OllamaConfig `toml:"ollama"`
	Chat   ChatConfig   `toml:"chat"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// OllamaConfig contains server connection settings.
type OllamaConfig struct {
	// URL of the Ollama server
	URL string `toml:"url"`
	// RequestTimeoutSecs bounds non-streaming calls such as listing models
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// StreamIdleTimeoutSecs is the longest a response may stall between chunks
	StreamIdleTimeoutSecs int `toml:"stream_idle_timeout_secs"`
}

// ChatConfig contains conversation settings.
type ChatConfig struct {
	// SendHistory sends earlier turns with every prompt so the model
	// remembers the conversation.
	SendHistory bool `toml:"send_history"`
	// ShowThinking displays reasoning segments in a panel.
	ShowThinking bool `toml:"show_thinking"`
	// SystemPrompt is sent before the conversation when set.
	SystemPrompt string `toml:"system_prompt"`
	// Temperature overrides the model's sampling temperature (0.0-2.0).
	Temperature *float64 `toml:"temperature,omitempty"`
	// MaxTokens caps the length of a response. 0 means the model default.
	MaxTokens int `toml:"max_tokens"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// RenderMarkdown renders assistant messages in /history as markdown
	RenderMarkdown bool `toml:"render_markdown"`
	// ShowStats prints token statistics after each response
	ShowStats bool `toml:"show_stats"`
	// NoColor disables colored output
	NoColor bool `toml:"no_color"`
}

// LogConfig contains diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// File receives log output instead of stderr when set
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:                   "http://127.0.0.1:11434",
			RequestTimeoutSecs:    30,
			StreamIdleTimeoutSecs: 120,
		},
		Chat: ChatConfig{
			SendHistory:  false,
			ShowThinking: true,
		},
		UI: UIConfig{
			RenderMarkdown: true,
			ShowStats:      false,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// RequestTimeout returns the timeout for non-streaming calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Ollama.RequestTimeoutSecs) * time.Second
}

// StreamIdleTimeout returns the longest allowed gap between stream chunks.
func (c *Config) StreamIdleTimeout() time.Duration {
	return time.Duration(c.Ollama.StreamIdleTimeoutSecs) * time.Second
}

// ModelOptions returns the model parameters to send with chat requests, or
// nil when none are set.
func (c *Config) ModelOptions() map[string]any {
	opts := map[string]any{}
	if c.Chat.Temperature != nil {
		opts["temperature"] = *c.Chat.Temperature
	}
	if c.Chat.MaxTokens > 0 {
		opts["num_predict"] = c.Chat.MaxTokens
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatnexus configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("CHATNEXUS_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatnexus"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the path to the REPL input history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "input_history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the default config file, falling back to defaults when it does
// not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from path. A missing file yields the
// defaults; a malformed or invalid one is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// UpdateFile sets a single key in the file at path. Environment overrides
// are not written.
func UpdateFile(path, key, value string) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	cfg.fillDefaults()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

func readFile(path string) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("failed to load config from %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	return cfg, nil
}

// fillDefaults replaces zero values that have no valid meaning.
func (c *Config) fillDefaults() {
	defaults := Default()
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.RequestTimeoutSecs == 0 {
		c.Ollama.RequestTimeoutSecs = defaults.Ollama.RequestTimeoutSecs
	}
	if c.Ollama.StreamIdleTimeoutSecs == 0 {
		c.Ollama.StreamIdleTimeoutSecs = defaults.Ollama.StreamIdleTimeoutSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatnexus configuration file\n")
	buf.WriteString("# Generated by chatnexus - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Ollama.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: fmt.Sprintf("invalid URL '%s', expected http://host:port", c.Ollama.URL),
		})
	}
	if c.Ollama.RequestTimeoutSecs < 1 || c.Ollama.RequestTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "ollama.request_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Ollama.RequestTimeoutSecs),
		})
	}
	if c.Ollama.StreamIdleTimeoutSecs < 1 || c.Ollama.StreamIdleTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "ollama.stream_idle_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 3600, got %d", c.Ollama.StreamIdleTimeoutSecs),
		})
	}
	if t := c.Chat.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, ValidationError{
			Field:   "chat.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %g", *t),
		})
	}
	if c.Chat.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.max_tokens",
			Message: fmt.Sprintf("must not be negative, got %d", c.Chat.MaxTokens),
		})
	}
	if !contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(validLogLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - OLLAMA_HOST: overrides ollama.url (a bare host:port is accepted)
//   - CHATNEXUS_MODEL: overrides default_model
//   - CHATNEXUS_STREAM_TIMEOUT: overrides ollama.stream_idle_timeout_secs
//   - CHATNEXUS_SEND_HISTORY: overrides chat.send_history
//   - CHATNEXUS_LOG_FILE: overrides log.file
//
// Values that do not parse are ignored.
func (c *Config) ApplyEnvOverrides() {
	if host := strings.TrimSpace(os.Getenv("OLLAMA_HOST")); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.Ollama.URL = host
	}

	if model := os.Getenv("CHATNEXUS_MODEL"); model != "" {
		c.DefaultModel = model
	}

	if v := os.Getenv("CHATNEXUS_STREAM_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Ollama.StreamIdleTimeoutSecs = secs
		}
	}

	if v := os.Getenv("CHATNEXUS_SEND_HISTORY"); v != "" {
		if b, ok := parseBool(v); ok {
			c.Chat.SendHistory = b
		}
	}

	if v := os.Getenv("CHATNEXUS_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
