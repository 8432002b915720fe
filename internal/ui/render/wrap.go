// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// TabWidth is the tab stop interval used when expanding TAB characters.
const TabWidth = 4

// Sanitize makes a single line safe to draw on a raw terminal. TAB is
// expanded to the next tab stop, other C0 controls, ESC and DEL are shown
// in caret notation (^[, ^M, ^?) and C1 controls are dropped, so the cell
// width of the result is exactly what the terminal will advance.
func Sanitize(line string) string {
	clean := true
	for _, r := range line {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			clean = false
			break
		}
	}
	if clean {
		return line
	}

	var b strings.Builder
	col := 0
	for _, r := range line {
		switch {
		case r == '\t':
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r < 0x20:
			b.WriteByte('^')
			b.WriteByte(byte(r) + '@')
			col += 2
		case r == 0x7f:
			b.WriteString("^?")
			col += 2
		case r >= 0x80 && r <= 0x9f:
		default:
			b.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return b.String()
}

// Wrap word-wraps a single logical line to width cells. Words longer than
// width are broken hard. An empty line yields one empty line. The line is
// sanitized first.
func Wrap(line string, width int) []string {
	if width < 1 {
		width = 1
	}
	line = Sanitize(line)
	if line == "" {
		return []string{""}
	}
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	wrapped := wrap.String(wordwrap.String(line, width), width)
	return strings.Split(wrapped, "\n")
}

// WrapText splits text on newlines and wraps every resulting line.
func WrapText(text string, width int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, Wrap(line, width)...)
	}
	return out
}

// skipCells drops leading characters of s until at least n cells are
// gone. It returns the remainder and the number of cells actually dropped.
func skipCells(s string, n int) (string, int) {
	if n <= 0 {
		return s, 0
	}
	skipped := 0
	for i, r := range s {
		if skipped >= n {
			return s[i:], skipped
		}
		skipped += runewidth.RuneWidth(r)
	}
	return "", skipped
}
