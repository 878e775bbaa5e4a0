// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package think

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run feeds fragments through a fresh classifier and collects everything it
// produced, including what Finalize flushes.
func run(fragments ...string) (answer string, segments []string, state State) {
	c := New()
	var b strings.Builder
	for _, f := range fragments {
		res := c.Process(f)
		b.WriteString(res.Answer)
		segments = append(segments, res.Segments...)
	}
	state = c.State()
	res := c.Finalize()
	b.WriteString(res.Answer)
	segments = append(segments, res.Segments...)
	return b.String(), segments, state
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i:i+1])
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestClassifier_SingleFragmentPair(t *testing.T) {
	answer, segments, state := run("Hello <think>check facts</think> world")

	assert.Equal(t, "Hello  world", answer)
	assert.Equal(t, []string{"check facts"}, segments)
	assert.Equal(t, Answering, state)
}

func TestClassifier_PairSplitAcrossFragments(t *testing.T) {
	answer, segments, _ := run("Hello <think>chec", "k facts</think> world")

	assert.Equal(t, "Hello  world", answer)
	assert.Equal(t, []string{"check facts"}, segments)
}

func TestClassifier_NoTags(t *testing.T) {
	c := New()
	res := c.Process("no tags here")

	assert.Equal(t, "no tags here", res.Answer)
	assert.Empty(t, res.Segments)
	assert.Empty(t, c.Finalize().Segments)
}

func TestClassifier_UnclosedSegmentFlushedByFinalize(t *testing.T) {
	c := New()
	res := c.Process("<think>only reasoning")

	assert.Empty(t, res.Answer)
	assert.Empty(t, res.Segments)
	assert.Equal(t, Reasoning, c.State())

	final := c.Finalize()
	assert.Empty(t, final.Answer)
	assert.Equal(t, []string{"only reasoning"}, final.Segments)
	assert.Equal(t, Answering, c.State())
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func TestClassifier_Transitions(t *testing.T) {
	c := New()

	res := c.Process("intro <think> first")
	assert.Equal(t, "intro ", res.Answer)
	assert.Equal(t, Reasoning, c.State())

	res = c.Process(" middle ")
	assert.Empty(t, res.Answer)
	assert.Empty(t, res.Segments)
	assert.Equal(t, " first middle ", c.Pending())

	res = c.Process("last </think>tail")
	assert.Equal(t, "tail", res.Answer)
	assert.Equal(t, []string{"first middle last"}, res.Segments)
	assert.Equal(t, Answering, c.State())
	assert.Empty(t, c.Pending())
}

func TestClassifier_EmptySegmentNotEmitted(t *testing.T) {
	c := New()

	res := c.Process("a<think>   </think>b")
	assert.Equal(t, "ab", res.Answer)
	assert.Empty(t, res.Segments)

	c.Process("<think>\n")
	res = c.Process("\n</think>c")
	assert.Equal(t, "c", res.Answer)
	assert.Empty(t, res.Segments)
	assert.Equal(t, Answering, c.State())
}

func TestClassifier_MultiplePairsInOneFragment(t *testing.T) {
	answer, segments, _ := run("a<think>one</think>b<think>two</think>c")

	assert.Equal(t, "abc", answer)
	assert.Equal(t, []string{"one", "two"}, segments)
}

func TestClassifier_StrayCloseDropped(t *testing.T) {
	answer, segments, _ := run("done</think> here")

	assert.Equal(t, "done here", answer)
	assert.Empty(t, segments)
}

func TestClassifier_PairInsideOpenSegment(t *testing.T) {
	c := New()
	c.Process("<think>outer")

	res := c.Process(" <think>inner</think> more")
	assert.Equal(t, []string{"inner"}, res.Segments)
	assert.Equal(t, Reasoning, c.State())
	assert.Equal(t, "outer  more", c.Pending())

	res = c.Process("</think>")
	assert.Equal(t, []string{"outer  more"}, res.Segments)
}

func TestClassifier_RedundantOpenDropped(t *testing.T) {
	answer, segments, _ := run("<think>a", "<think>b", "</think>c")

	assert.Equal(t, "c", answer)
	assert.Equal(t, []string{"ab"}, segments)
}

// =============================================================================
// MARKER MATCHING
// =============================================================================

func TestClassifier_MarkerVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"upper case", "x<THINK>r</THINK>y"},
		{"mixed case", "x<Think>r</tHiNk>y"},
		{"inner spaces", "x< think >r< / think >y"},
		{"newlines", "x<\nthink\n>r<\n/\nthink\n>y"},
		{"tabs", "x<\tthink>r</think\t>y"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answer, segments, _ := run(tc.input)
			assert.Equal(t, "xy", answer)
			assert.Equal(t, []string{"r"}, segments)
		})
	}
}

func TestClassifier_NonMarkersPassThrough(t *testing.T) {
	inputs := []string{
		"a < b and c > d",
		"<b>bold</b>",
		"<thinking>not ours</thinking>",
		"<th ink>",
		"if x<y { return }",
		"<",
		"trailing <",
	}

	for _, in := range inputs {
		answer, segments, _ := run(in)
		assert.Equal(t, in, answer, "input %q", in)
		assert.Empty(t, segments, "input %q", in)
	}
}

func TestClassifier_PartialMarkerHeldBack(t *testing.T) {
	c := New()

	res := c.Process("Hello <thi")
	assert.Equal(t, "Hello ", res.Answer)
	assert.Equal(t, Answering, c.State())

	res = c.Process("nk>why")
	assert.Empty(t, res.Answer)
	assert.Equal(t, Reasoning, c.State())

	res = c.Process("</thi")
	assert.Empty(t, res.Segments)

	res = c.Process("nk>!")
	assert.Equal(t, "!", res.Answer)
	assert.Equal(t, []string{"why"}, res.Segments)
}

func TestClassifier_HeldBackTextReleasedWhenNotMarker(t *testing.T) {
	c := New()

	res := c.Process("a <th")
	assert.Equal(t, "a ", res.Answer)

	res = c.Process("at is all")
	assert.Equal(t, "<that is all", res.Answer)
}

func TestClassifier_FinalizeFlushesHeldBackText(t *testing.T) {
	c := New()

	res := c.Process("value <")
	assert.Equal(t, "value ", res.Answer)

	final := c.Finalize()
	assert.Equal(t, "<", final.Answer)
	assert.Empty(t, final.Segments)
}

func TestClassifier_LongWhitespaceNotHeld(t *testing.T) {
	in := "<" + strings.Repeat(" ", maxMarkerLen+4)
	c := New()

	res := c.Process(in)
	assert.Equal(t, in, res.Answer)
}

func TestClassifier_OverlongMarkerIndependentOfChunking(t *testing.T) {
	spaces := strings.Repeat(" ", 40)
	in := "<" + spaces + "think>x"

	whole, wholeSegs, wholeState := run(in)
	split, splitSegs, splitState := run("<"+spaces[:20], spaces[20:], "think>x")

	assert.Equal(t, in, whole)
	assert.Empty(t, wholeSegs)
	assert.Equal(t, Answering, wholeState)
	assert.Equal(t, whole, split)
	assert.Equal(t, wholeSegs, splitSegs)
	assert.Equal(t, wholeState, splitState)
}

func TestClassifier_WhitespaceMarkerAtLengthLimit(t *testing.T) {
	// "<" + spaces + "think>" is exactly maxMarkerLen bytes.
	spaces := strings.Repeat(" ", maxMarkerLen-len("<think>"))
	in := "<" + spaces + "think>reason</think>done"

	for _, fragments := range [][]string{{in}, chars(in)} {
		answer, segments, _ := run(fragments...)
		assert.Equal(t, "done", answer)
		assert.Equal(t, []string{"reason"}, segments)
	}
}

// =============================================================================
// CHUNKING PROPERTIES
// =============================================================================

var tagSpan = regexp.MustCompile(`(?is)<\s*think\s*>(.*?)<\s*/\s*think\s*>`)

// expected computes answer and segments for inputs with well-formed pairs.
func expected(input string) (string, []string) {
	var segments []string
	for _, m := range tagSpan.FindAllStringSubmatch(input, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			segments = append(segments, s)
		}
	}
	return tagSpan.ReplaceAllString(input, ""), segments
}

var corpus = []string{
	"Hello <think>check facts</think> world",
	"<think>\nThe user greets me.\nI should greet back.\n</think>\n\nHi there!",
	"plain answer with a < sign and <b>html</b>",
	"a<think>one</think>b< THINK >two< / think >c",
	"<think></think>only answer",
	"multi\nline <think>r1\nr2</think> done <think>again</think>",
	"unicode ✓ <think>naïve café</think> 日本語",
}

func TestClassifier_SplitAtEveryBoundary(t *testing.T) {
	for _, in := range corpus {
		wantAnswer, wantSegments := expected(in)
		for i := 0; i <= len(in); i++ {
			answer, segments, _ := run(in[:i], in[i:])
			require.Equal(t, wantAnswer, answer, "input %q split at %d", in, i)
			require.Equal(t, wantSegments, segments, "input %q split at %d", in, i)
		}
	}
}

func TestClassifier_OneBytePerFragment(t *testing.T) {
	for _, in := range corpus {
		wantAnswer, wantSegments := expected(in)
		answer, segments, _ := run(chars(in)...)
		assert.Equal(t, wantAnswer, answer, "input %q", in)
		assert.Equal(t, wantSegments, segments, "input %q", in)
	}
}

func TestClassifier_RandomChunking(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, in := range corpus {
		wantAnswer, wantSegments := expected(in)
		for trial := 0; trial < 200; trial++ {
			var fragments []string
			rest := in
			for len(rest) > 0 {
				n := rng.Intn(len(rest)) + 1
				if n > 6 {
					n = rng.Intn(6) + 1
				}
				fragments = append(fragments, rest[:n])
				rest = rest[n:]
			}

			answer, segments, _ := run(fragments...)
			require.Equal(t, wantAnswer, answer, "fragments %q", fragments)
			require.Equal(t, wantSegments, segments, "fragments %q", fragments)
		}
	}
}

func TestClassifier_NoMarkerLeakage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := append([]string{
		"</think>stray<think>open",
		"<think>a<think>b</think>c</think>d",
		"x</think></think><think><think>y",
	}, corpus...)

	for _, in := range inputs {
		for trial := 0; trial < 100; trial++ {
			var fragments []string
			rest := in
			for len(rest) > 0 {
				n := rng.Intn(4) + 1
				if n > len(rest) {
					n = len(rest)
				}
				fragments = append(fragments, rest[:n])
				rest = rest[n:]
			}

			answer, segments, _ := run(fragments...)
			assert.NotRegexp(t, `(?i)<\s*/?\s*think\s*>`, answer)
			for _, s := range segments {
				assert.NotRegexp(t, `(?i)<\s*/?\s*think\s*>`, s)
			}
		}
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "answering", Answering.String())
	assert.Equal(t, "reasoning", Reasoning.String())
	assert.Equal(t, "unknown", State(9).String())
}
