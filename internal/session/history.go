// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the conversation.
type Turn struct {
	Role    Role
	Content string
}

// History is the ordered record of completed exchanges.
//
// Only the Loop appends to it, and only after a turn succeeds, so it always
// holds whole user/assistant pairs.
type History struct {
	turns []Turn
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{turns: make([]Turn, 0)}
}

// Append records one exchange: the user's prompt followed by the answer.
func (h *History) Append(user, assistant string) {
	h.turns = append(h.turns,
		Turn{Role: RoleUser, Content: user},
		Turn{Role: RoleAssistant, Content: assistant},
	)
}

// Turns returns a copy of the recorded turns in order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Clear drops every recorded turn.
func (h *History) Clear() {
	h.turns = h.turns[:0]
}
