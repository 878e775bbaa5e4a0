// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Setting describes one configuration key addressable in dot notation.
type Setting struct {
	Key         string
	Description string

	get func(*Config) string
	set func(*Config, string) error
}

var settings = []Setting{
	{
		Key: "default_model", Description: "Model selected at start-up",
		get: func(c *Config) string { return c.DefaultModel },
		set: func(c *Config, v string) error { c.DefaultModel = v; return nil },
	},
	{
		Key: "ollama.url", Description: "Ollama server address",
		get: func(c *Config) string { return c.Ollama.URL },
		set: func(c *Config, v string) error { c.Ollama.URL = v; return nil },
	},
	{
		Key: "ollama.request_timeout_secs", Description: "Timeout for non-streaming calls",
		get: func(c *Config) string { return strconv.Itoa(c.Ollama.RequestTimeoutSecs) },
		set: intSetter(func(c *Config) *int { return &c.Ollama.RequestTimeoutSecs }),
	},
	{
		Key: "ollama.stream_idle_timeout_secs", Description: "Longest pause allowed while streaming",
		get: func(c *Config) string { return strconv.Itoa(c.Ollama.StreamIdleTimeoutSecs) },
		set: intSetter(func(c *Config) *int { return &c.Ollama.StreamIdleTimeoutSecs }),
	},
	{
		Key: "chat.send_history", Description: "Send earlier turns with each prompt",
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.SendHistory) },
		set: boolSetter(func(c *Config) *bool { return &c.Chat.SendHistory }),
	},
	{
		Key: "chat.show_thinking", Description: "Show reasoning in a panel",
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.ShowThinking) },
		set: boolSetter(func(c *Config) *bool { return &c.Chat.ShowThinking }),
	},
	{
		Key: "chat.system_prompt", Description: "System prompt sent before the conversation",
		get: func(c *Config) string { return c.Chat.SystemPrompt },
		set: func(c *Config, v string) error { c.Chat.SystemPrompt = v; return nil },
	},
	{
		Key: "chat.temperature", Description: "Sampling temperature (0.0-2.0, empty for model default)",
		get: func(c *Config) string {
			if c.Chat.Temperature == nil {
				return ""
			}
			return strconv.FormatFloat(*c.Chat.Temperature, 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			if v == "" {
				c.Chat.Temperature = nil
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number '%s'", v)
			}
			c.Chat.Temperature = &f
			return nil
		},
	},
	{
		Key: "chat.max_tokens", Description: "Maximum tokens per response (0 for model default)",
		get: func(c *Config) string { return strconv.Itoa(c.Chat.MaxTokens) },
		set: intSetter(func(c *Config) *int { return &c.Chat.MaxTokens }),
	},
	{
		Key: "ui.render_markdown", Description: "Render markdown in /history",
		get: func(c *Config) string { return strconv.FormatBool(c.UI.RenderMarkdown) },
		set: boolSetter(func(c *Config) *bool { return &c.UI.RenderMarkdown }),
	},
	{
		Key: "ui.show_stats", Description: "Print token statistics after each response",
		get: func(c *Config) string { return strconv.FormatBool(c.UI.ShowStats) },
		set: boolSetter(func(c *Config) *bool { return &c.UI.ShowStats }),
	},
	{
		Key: "ui.no_color", Description: "Disable colored output",
		get: func(c *Config) string { return strconv.FormatBool(c.UI.NoColor) },
		set: boolSetter(func(c *Config) *bool { return &c.UI.NoColor }),
	},
	{
		Key: "log.level", Description: "Log level (debug, info, warn, error)",
		get: func(c *Config) string { return c.Log.Level },
		set: func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil },
	},
	{
		Key: "log.file", Description: "Write logs to this file instead of stderr",
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer '%s'", v)
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, ok := parseBool(v)
		if !ok {
			return fmt.Errorf("invalid boolean '%s', use true or false", v)
		}
		*field(c) = b
		return nil
	}
}

// Settings returns every configurable key in display order.
func Settings() []Setting {
	out := make([]Setting, len(settings))
	copy(out, settings)
	return out
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key
	}
	return keys
}

func lookup(key string) (Setting, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, s := range settings {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// Get returns the value of key formatted as a string.
func (c *Config) Get(key string) (string, error) {
	s, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("unknown setting: %s", key)
	}
	return s.get(c), nil
}

// Set parses value into key. The change is applied only if the resulting
// configuration is valid.
func (c *Config) Set(key, value string) error {
	s, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}

	next := *c
	if err := s.set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", s.Key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
