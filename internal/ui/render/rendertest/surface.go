// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rendertest provides an in-memory render.Surface for tests.
package rendertest

import (
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/termchat/internal/ui/styles"
)

// Surface records what was drawn as plain text, one string per row.
type Surface struct {
	mu    sync.Mutex
	rows  int
	cols  int
	lines []string
	tones []styles.Tone

	cursorRow int
	cursorCol int

	Clears  int
	Flushes int
}

// New creates a surface of the given size.
func New(rows, cols int) *Surface {
	s := &Surface{}
	s.Resize(rows, cols)
	return s
}

// Resize changes the geometry and blanks the screen.
func (s *Surface) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.cols = rows, cols
	s.lines = make([]string, rows)
	s.tones = make([]styles.Tone, rows)
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		s.lines[i] = ""
		s.tones[i] = styles.ToneDefault
	}
	s.Clears++
}

func (s *Surface) ClearLine(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.rows {
		return
	}
	s.lines[row] = ""
	s.tones[row] = styles.ToneDefault
}

// DrawText places text at (row, col), replacing whatever was to its right.
func (s *Surface) DrawText(row, col int, text string, tone styles.Tone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.rows || col < 0 {
		return
	}
	prefix := runewidth.Truncate(s.lines[row], col, "")
	if w := runewidth.StringWidth(prefix); w < col {
		prefix += strings.Repeat(" ", col-w)
	}
	s.lines[row] = prefix + text
	s.tones[row] = tone
}

func (s *Surface) MoveCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorRow, s.cursorCol = row, col
}

func (s *Surface) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Flushes++
	return nil
}

// Line returns the text on row.
func (s *Surface) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.rows {
		return ""
	}
	return s.lines[row]
}

// Tone returns the tone of the last text drawn on row.
func (s *Surface) Tone(row int) styles.Tone {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.rows {
		return styles.ToneDefault
	}
	return s.tones[row]
}

// Lines returns a copy of all rows.
func (s *Surface) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Cursor returns the last cursor position.
func (s *Surface) Cursor() (row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorRow, s.cursorCol
}

// Contains reports whether any row contains substr.
func (s *Surface) Contains(substr string) bool {
	for _, l := range s.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// String renders the screen as newline-separated rows.
func (s *Surface) String() string {
	return strings.Join(s.Lines(), "\n")
}
