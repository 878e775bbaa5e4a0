// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatnexus.
//
// Configuration is read from a TOML file with sensible defaults, environment
// variable overrides, and validation.
//
// # Configuration Precedence
//
//   - Command-line flags (applied by the caller)
//   - Environment variables (OLLAMA_HOST, CHATNEXUS_*)
//   - ~/.chatnexus/config.toml
//   - Built-in defaults
//
// The directory can be moved with CHATNEXUS_HOME.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client, err := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL:           cfg.Ollama.URL,
//	    StreamIdleTimeout: cfg.StreamIdleTimeout(),
//	})
package config
