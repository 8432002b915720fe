// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/jeranaias/termchat/internal/ui/styles"

// Surface is the drawing target. Rows and columns are zero based. Drawing
// calls may be buffered until Flush.
type Surface interface {
	// Size returns the current geometry in cells.
	Size() (rows, cols int)

	Clear()
	ClearLine(row int)

	// DrawText writes a single line of text starting at (row, col). The
	// caller has already clipped text to the surface width.
	DrawText(row, col int, text string, tone styles.Tone)

	MoveCursor(row, col int)
	Flush() error
}
