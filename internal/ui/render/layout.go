// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

// MinRows is the smallest height that fits header, rules, one pane row,
// input and help.
const MinRows = 6

// Layout is the viewport geometry of the chat screen, recomputed on every
// redraw:
//
//	row 0          header
//	row 1          rule
//	rows 2..R-4    message pane
//	row R-3        rule
//	row R-2        input
//	row R-1        help
type Layout struct {
	Rows int
	Cols int
}

// Width is the usable line width. The last column is left empty so that
// writing it never scrolls the terminal.
func (l Layout) Width() int {
	if l.Cols <= 1 {
		return 1
	}
	return l.Cols - 1
}

// Fits reports whether the full chat layout can be drawn.
func (l Layout) Fits() bool {
	return l.Rows >= MinRows && l.Cols >= 2
}

func (l Layout) HeaderRow() int     { return 0 }
func (l Layout) TopRuleRow() int    { return 1 }
func (l Layout) PaneTop() int       { return 2 }
func (l Layout) PaneBottom() int    { return l.Rows - 4 }
func (l Layout) BottomRuleRow() int { return l.Rows - 3 }
func (l Layout) InputRow() int      { return l.Rows - 2 }
func (l Layout) HelpRow() int       { return l.Rows - 1 }

// PaneHeight is the number of message rows.
func (l Layout) PaneHeight() int {
	h := l.PaneBottom() - l.PaneTop() + 1
	if h < 0 {
		return 0
	}
	return h
}

// ListCapacity is how many item rows a full-screen list shows: the title
// takes row 0 and the help line takes the last row.
func ListCapacity(rows int) int {
	if rows < 3 {
		return 1
	}
	return rows - 2
}
