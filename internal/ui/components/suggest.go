// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
)

// =============================================================================
// FUZZY SUGGESTIONS
// =============================================================================

// fuzzyScore matches query against target as an in-order subsequence,
// case-insensitively. Consecutive and leading matches score higher and
// longer targets are penalized.
func fuzzyScore(query, target string) (int, bool) {
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))
	if len(q) == 0 {
		return 0, true
	}
	if len(q) > len(t) {
		return 0, false
	}

	score, qi, last := 0, 0, -1
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		score += s
		last = ti
		qi++
	}
	if qi != len(q) {
		return 0, false
	}
	return score - len(t)/4, true
}

// Suggest returns the candidates that fuzzy-match query, best first. Ties
// keep candidate order.
func Suggest(query string, candidates []string) []string {
	type scored struct {
		name  string
		score int
	}
	var matches []scored
	for _, c := range candidates {
		if s, ok := fuzzyScore(query, c); ok {
			matches = append(matches, scored{c, s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
