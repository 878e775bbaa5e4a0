// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_AppendAndClear(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0, h.Len())

	h.Append("q1", "a1")
	h.Append("q2", "a2")

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
		{Role: RoleUser, Content: "q2"},
		{Role: RoleAssistant, Content: "a2"},
	}, h.Turns())

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Turns())
}

func TestHistory_TurnsReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Append("q", "a")

	turns := h.Turns()
	turns[0].Content = "changed"

	assert.Equal(t, "q", h.Turns()[0].Content)
}
