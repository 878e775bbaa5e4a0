// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package think

// markerKind identifies which delimiter was matched.
type markerKind int

const (
	markerNone markerKind = iota
	markerOpen
	markerClose
)

const tagName = "think"

// maxMarkerLen is the longest marker accepted, internal whitespace included.
// It also bounds how much trailing text is held back as a partial marker.
const maxMarkerLen = 32

// matchResult describes what was found at a '<' position.
type matchResult struct {
	kind    markerKind
	length  int  // bytes consumed by a complete marker
	partial bool // input ended while the marker was still plausible
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// matchAt tries to read a marker starting at s[i], which must be '<'.
// Whitespace is allowed around the slash and the tag name, but a marker never
// spans more than maxMarkerLen bytes, so the result does not depend on how
// the stream was chunked.
func matchAt(s string, i int) matchResult {
	end := min(len(s), i+maxMarkerLen)
	short := func() matchResult {
		if end < len(s) {
			return matchResult{}
		}
		return matchResult{partial: true}
	}

	j := i + 1
	skip := func() {
		for j < end && isSpace(s[j]) {
			j++
		}
	}

	kind := markerOpen
	skip()
	if j == end {
		return short()
	}
	if s[j] == '/' {
		kind = markerClose
		j++
		skip()
	}

	for k := 0; k < len(tagName); k++ {
		if j == end {
			return short()
		}
		if lower(s[j]) != tagName[k] {
			return matchResult{}
		}
		j++
	}

	skip()
	if j == end {
		return short()
	}
	if s[j] != '>' {
		return matchResult{}
	}
	return matchResult{kind: kind, length: j + 1 - i}
}

// findMarker returns the position and result of the first complete marker of
// the given kind at or after start, or -1.
func findMarker(s string, start int, kind markerKind) (int, matchResult) {
	for i := start; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		if m := matchAt(s, i); m.kind == kind {
			return i, m
		}
	}
	return -1, matchResult{}
}
