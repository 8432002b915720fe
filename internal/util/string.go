// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: all length limits in termchat count runes, never bytes, so a
// multi-byte character is never split.

// ClampRunes cuts s to maxRunes runes and appends marker when s is longer.
// The returned flag reports whether a cut happened. The result of a cut is
// always exactly maxRunes runes of s followed by marker.
func ClampRunes(s string, maxRunes int, marker string) (string, bool) {
	if maxRunes < 0 {
		maxRunes = 0
	}
	// Fast path: byte length bounds rune length.
	if len(s) <= maxRunes {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s, false
	}
	return string(runes[:maxRunes]) + marker, true
}

// TruncateRunes truncates a string to maxRunes runes, appending "..." when
// anything was removed.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// OneLine replaces line breaks with spaces.
func OneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

// Width returns the number of terminal cells s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// FitWidth clips s so it occupies at most maxWidth cells. Wide characters
// that would straddle the limit are dropped.
func FitWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "")
}

// TailWidth returns the longest suffix of s that fits in maxWidth cells.
func TailWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	runes := []rune(s)
	width := 0
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if width+w > maxWidth {
			break
		}
		width += w
		i--
	}
	return string(runes[i:])
}
