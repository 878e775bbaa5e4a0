// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"sort"
	"strings"
)

// MinSimilarity is the lowest similarity at which Suggest offers a match.
const MinSimilarity = 0.6

// Suggest returns up to n candidates that look like a typo of input, closest
// first. Similarity is 1 - distance/longest, where distance is the
// Levenshtein distance, compared case-insensitively. Ties keep the order of
// candidates.
func Suggest(input string, candidates []string, n int) []string {
	if n <= 0 || input == "" {
		return nil
	}
	in := []rune(strings.ToLower(input))

	type match struct {
		name     string
		distance int
	}
	var matches []match
	for _, c := range candidates {
		cand := []rune(strings.ToLower(c))
		d := levenshteinDistance(in, cand)
		longest := max(len(in), len(cand))
		if 1-float64(d)/float64(longest) >= MinSimilarity-1e-9 {
			matches = append(matches, match{name: c, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, m.name)
	}
	return out
}

// levenshteinDistance is the minimum number of single-rune insertions,
// deletions or substitutions that turn s1 into s2.
func levenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows instead of the full matrix.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
