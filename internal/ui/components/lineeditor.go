// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

// DefaultRecallSize caps how many submitted lines the recall history keeps.
const DefaultRecallSize = 100

// =============================================================================
// LINE EDITOR
// =============================================================================

// EditorState is a snapshot of the buffer and cursor, used to park the
// main input while command entry is active.
type EditorState struct {
	Text   string
	Cursor int
}

// LineEditor is a single-line text buffer with a rune cursor and an
// optional recall history of submitted lines (newest first).
//
// Invariant: 0 <= cursor <= len(buf).
type LineEditor struct {
	buf    []rune
	cursor int

	recordHistory bool
	history       []string
	recall        int // -1 when not browsing
	maxHistory    int
}

// NewLineEditor creates an editor. Only editors created withHistory record
// submitted lines and support recall.
func NewLineEditor(withHistory bool) *LineEditor {
	return &LineEditor{
		recordHistory: withHistory,
		recall:        -1,
		maxHistory:    DefaultRecallSize,
	}
}

// Text returns the buffer contents.
func (e *LineEditor) Text() string { return string(e.buf) }

// Cursor returns the cursor offset in runes.
func (e *LineEditor) Cursor() int { return e.cursor }

// Len returns the buffer length in runes.
func (e *LineEditor) Len() int { return len(e.buf) }

// Insert adds r at the cursor.
func (e *LineEditor) Insert(r rune) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.cursor+1:], e.buf[e.cursor:])
	e.buf[e.cursor] = r
	e.cursor++
}

// InsertString inserts s at the cursor.
func (e *LineEditor) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// DeleteBackward removes the rune before the cursor. It reports whether
// anything was removed.
func (e *LineEditor) DeleteBackward() bool {
	if e.cursor == 0 {
		return false
	}
	e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
	e.cursor--
	return true
}

// MoveLeft moves the cursor one rune left, stopping at the start.
func (e *LineEditor) MoveLeft() {
	if e.cursor > 0 {
		e.cursor--
	}
}

// MoveRight moves the cursor one rune right, stopping at the end.
func (e *LineEditor) MoveRight() {
	if e.cursor < len(e.buf) {
		e.cursor++
	}
}

// SetText replaces the buffer and puts the cursor at the end.
func (e *LineEditor) SetText(s string) {
	e.buf = []rune(s)
	e.cursor = len(e.buf)
}

// Reset empties the buffer and leaves recall browsing.
func (e *LineEditor) Reset() {
	e.buf = e.buf[:0]
	e.cursor = 0
	e.recall = -1
}

// State returns a snapshot of text and cursor.
func (e *LineEditor) State() EditorState {
	return EditorState{Text: e.Text(), Cursor: e.cursor}
}

// Restore puts back a snapshot taken with State, verbatim.
func (e *LineEditor) Restore(s EditorState) {
	e.buf = []rune(s.Text)
	e.cursor = s.Cursor
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.cursor > len(e.buf) {
		e.cursor = len(e.buf)
	}
}

// =============================================================================
// RECALL HISTORY
// =============================================================================

// Submit returns the buffer contents, records them at the front of the
// recall history (when enabled and non-empty) and empties the buffer.
func (e *LineEditor) Submit() string {
	text := e.Text()
	if e.recordHistory && text != "" {
		e.history = append([]string{text}, e.history...)
		if len(e.history) > e.maxHistory {
			e.history = e.history[:e.maxHistory]
		}
	}
	e.Reset()
	return text
}

// RecallPrevious replaces the buffer with the next older history entry.
func (e *LineEditor) RecallPrevious() bool {
	if !e.recordHistory || e.recall+1 >= len(e.history) {
		return false
	}
	e.recall++
	e.SetText(e.history[e.recall])
	return true
}

// RecallNext replaces the buffer with the next newer history entry, or
// empties it when leaving the newest entry.
func (e *LineEditor) RecallNext() bool {
	if !e.recordHistory || e.recall < 0 {
		return false
	}
	e.recall--
	if e.recall < 0 {
		e.SetText("")
		return true
	}
	e.SetText(e.history[e.recall])
	return true
}

// History returns the recall history, newest first.
func (e *LineEditor) History() []string {
	return append([]string(nil), e.history...)
}

// Browsing reports whether a recall entry is currently shown.
func (e *LineEditor) Browsing() bool {
	return e.recall >= 0
}
