// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package think

import "strings"

// State is the classifier's position relative to the reasoning markers.
type State int

const (
	// Answering means incoming text is answer text. This is the initial state.
	Answering State = iota
	// Reasoning means a reasoning segment is open and not yet closed.
	Reasoning
)

func (s State) String() string {
	switch s {
	case Answering:
		return "answering"
	case Reasoning:
		return "reasoning"
	default:
		return "unknown"
	}
}

// Result is what a single Process or Finalize call produced.
type Result struct {
	// Answer is the text that was classified as answer text, in order.
	Answer string

	// Segments are reasoning segments completed by this call. Each one is
	// trimmed and non-empty.
	Segments []string
}

// Classifier splits a fragmented token stream into reasoning and answer text.
//
// A Classifier is meant for a single model response and is not safe for
// concurrent use.
type Classifier struct {
	state   State
	pending strings.Builder

	// carry holds a trailing '<...' that may be the start of a marker
	// completed by the next fragment.
	carry string
}

// New returns a Classifier in the Answering state.
func New() *Classifier {
	return &Classifier{}
}

// State returns the current state.
func (c *Classifier) State() State {
	return c.state
}

// Pending returns the text of the open reasoning segment, untrimmed.
func (c *Classifier) Pending() string {
	return c.pending.String()
}

// Process classifies one fragment.
func (c *Classifier) Process(fragment string) Result {
	buf := c.carry + fragment
	c.carry = ""

	var res Result
	var answer strings.Builder

	start := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] != '<' {
			continue
		}

		m := matchAt(buf, i)
		if m.partial {
			if len(buf)-i > maxMarkerLen {
				continue
			}
			c.route(buf[start:i], &answer)
			c.carry = buf[i:]
			res.Answer = answer.String()
			return res
		}
		if m.kind == markerNone {
			continue
		}

		c.route(buf[start:i], &answer)
		next := i + m.length
		switch m.kind {
		case markerOpen:
			next = c.open(buf, next, &res)
		case markerClose:
			c.close(&res)
		}
		start = next
		i = next - 1
	}

	c.route(buf[start:], &answer)
	res.Answer = answer.String()
	return res
}

// Finalize flushes whatever the stream left behind: a held-back partial
// marker and an unclosed reasoning segment. The classifier is back in the
// Answering state afterwards.
func (c *Classifier) Finalize() Result {
	var res Result

	if c.carry != "" {
		tail := c.carry
		c.carry = ""
		if c.state == Answering {
			res.Answer = tail
		} else {
			c.pending.WriteString(tail)
		}
	}

	if c.state == Reasoning {
		c.close(&res)
	}
	return res
}

// route sends plain text to the side selected by the current state.
func (c *Classifier) route(text string, answer *strings.Builder) {
	if text == "" {
		return
	}
	if c.state == Reasoning {
		c.pending.WriteString(text)
		return
	}
	answer.WriteString(text)
}

// open handles an opening marker whose text starts at pos and returns the
// position processing should resume from.
func (c *Classifier) open(buf string, pos int, res *Result) int {
	if c.state == Answering {
		c.state = Reasoning
		return pos
	}

	// Already reasoning. A pair closed within this fragment is reported as its
	// own segment and leaves the open segment alone.
	end, m := findMarker(buf, pos, markerClose)
	if end < 0 {
		return pos
	}
	emit(res, stripMarkers(buf[pos:end]))
	return end + m.length
}

// close ends the open reasoning segment. A closing marker with no open
// segment is dropped.
func (c *Classifier) close(res *Result) {
	if c.state != Reasoning {
		return
	}
	emit(res, c.pending.String())
	c.pending.Reset()
	c.state = Answering
}

func emit(res *Result, segment string) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return
	}
	res.Segments = append(res.Segments, segment)
}

// stripMarkers removes any complete markers from s.
func stripMarkers(s string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		m := matchAt(s, i)
		if m.kind == markerNone {
			continue
		}
		b.WriteString(s[start:i])
		start = i + m.length
		i = start - 1
	}
	b.WriteString(s[start:])
	return b.String()
}
