// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"help", "hepl", 2},
		{"models", "models", 0},
		{"naïve", "naive", 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, levenshteinDistance([]rune(tc.a), []rune(tc.b)), "%q -> %q", tc.a, tc.b)
	}
}

func TestSuggest(t *testing.T) {
	commands := []string{"/models", "/download", "/switch", "/settings", "/history", "/clear", "/help", "/exit"}

	assert.Equal(t, []string{"/models"}, Suggest("/modles", commands, 2))
	assert.Equal(t, []string{"/help"}, Suggest("/HLEP", commands, 2))
	assert.Equal(t, []string{"/exit"}, Suggest("/exti", commands, 2))
	assert.Empty(t, Suggest("/xyzzy", commands, 2))
	assert.Empty(t, Suggest("", commands, 2))
	assert.Empty(t, Suggest("/modles", commands, 0))
}

func TestSuggest_OrdersByDistanceAndLimits(t *testing.T) {
	installed := []string{"llama3:70b", "llama3:8b", "llama3.1:8b", "qwen3:8b"}

	got := Suggest("llama3:8", installed, 2)
	assert.Equal(t, []string{"llama3:8b", "llama3:70b"}, got)
}
