// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from the caller's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OLLAMA_HOST", "CHATNEXUS_MODEL", "CHATNEXUS_STREAM_TIMEOUT",
		"CHATNEXUS_SEND_HISTORY", "CHATNEXUS_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("CHATNEXUS_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Chat.ShowThinking)
	assert.False(t, cfg.Chat.SendHistory)
	assert.Equal(t, 2*time.Minute, cfg.StreamIdleTimeout())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Nil(t, cfg.ModelOptions())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Ollama, cfg.Ollama)
}

func TestLoadFromPath(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
default_model = "qwen3:8b"

[ollama]
url = "http://10.0.0.5:11434"
stream_idle_timeout_secs = 45

[chat]
send_history = true
temperature = 0.3
max_tokens = 512
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "qwen3:8b", cfg.DefaultModel)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.Ollama.URL)
	assert.Equal(t, 45*time.Second, cfg.StreamIdleTimeout())
	assert.Equal(t, 30, cfg.Ollama.RequestTimeoutSecs, "unset keys keep defaults")
	assert.True(t, cfg.Chat.SendHistory)
	assert.True(t, cfg.Chat.ShowThinking, "unset booleans keep defaults")
	assert.Equal(t, map[string]any{"temperature": 0.3, "num_predict": 512}, cfg.ModelOptions())
}

func TestLoadFromPath_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", "default_model = "},
		{"unknown key", "colour = \"blue\"\n"},
		{"invalid value", "[ollama]\nurl = \"ftp://nowhere\"\n"},
		{"bad temperature", "[chat]\ntemperature = 3.5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_HOST", "gpu-box:11434")
	t.Setenv("CHATNEXUS_MODEL", "llama3")
	t.Setenv("CHATNEXUS_STREAM_TIMEOUT", "15")
	t.Setenv("CHATNEXUS_SEND_HISTORY", "yes")
	t.Setenv("CHATNEXUS_LOG_FILE", "/tmp/chatnexus.log")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.URL)
	assert.Equal(t, "llama3", cfg.DefaultModel)
	assert.Equal(t, 15, cfg.Ollama.StreamIdleTimeoutSecs)
	assert.True(t, cfg.Chat.SendHistory)
	assert.Equal(t, "/tmp/chatnexus.log", cfg.Log.File)
}

func TestApplyEnvOverrides_IgnoresUnparseable(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATNEXUS_STREAM_TIMEOUT", "soon")
	t.Setenv("CHATNEXUS_SEND_HISTORY", "maybe")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 120, cfg.Ollama.StreamIdleTimeoutSecs)
	assert.False(t, cfg.Chat.SendHistory)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Ollama.URL = "not a url"
	cfg.Ollama.RequestTimeoutSecs = 0
	cfg.Chat.MaxTokens = -1
	cfg.Log.Level = "verbose"

	err := cfg.Validate()
	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 4)

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{
		"ollama.url", "ollama.request_timeout_secs", "chat.max_tokens", "log.level",
	}, fields)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "out", "config.toml")

	cfg := Default()
	cfg.DefaultModel = "mistral"
	require.NoError(t, cfg.Set("chat.temperature", "0.7"))
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", loaded.DefaultModel)
	require.NotNil(t, loaded.Chat.Temperature)
	assert.InDelta(t, 0.7, *loaded.Chat.Temperature, 1e-9)
}

func TestUpdateFile_SkipsEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "default_model = \"mistral\"\n")
	t.Setenv("OLLAMA_HOST", "10.0.0.9:11434")

	require.NoError(t, UpdateFile(path, "chat.send_history", "true"))
	require.Error(t, UpdateFile(path, "chat.send_history", "maybe"))

	t.Setenv("OLLAMA_HOST", "")
	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.True(t, loaded.Chat.SendHistory)
	assert.Equal(t, "mistral", loaded.DefaultModel)
	assert.Equal(t, Default().Ollama.URL, loaded.Ollama.URL)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("chat.send_history", "true"))
	assert.True(t, cfg.Chat.SendHistory)

	require.NoError(t, cfg.Set("CHAT.MAX_TOKENS", "256"))
	v, err := cfg.Get("chat.max_tokens")
	require.NoError(t, err)
	assert.Equal(t, "256", v)

	require.NoError(t, cfg.Set("chat.temperature", ""))
	assert.Nil(t, cfg.Chat.Temperature)

	_, err = cfg.Get("nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("nope", "x"))
	assert.Error(t, cfg.Set("chat.send_history", "perhaps"))
}

func TestSet_RejectsInvalidWithoutChanging(t *testing.T) {
	cfg := Default()

	err := cfg.Set("ollama.stream_idle_timeout_secs", "0")
	assert.Error(t, err)
	assert.Equal(t, 120, cfg.Ollama.StreamIdleTimeoutSecs)

	err = cfg.Set("chat.temperature", "9")
	assert.Error(t, err)
	assert.Nil(t, cfg.Chat.Temperature)
}

func TestKeys_MatchSettings(t *testing.T) {
	cfg := Default()
	for _, key := range Keys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
	assert.Len(t, Settings(), len(Keys()))
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATNEXUS_HOME", dir)

	cfgPath, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfgPath)

	histPath, err := HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "input_history"), histPath)

	require.NoError(t, EnsureConfigDir())
}
