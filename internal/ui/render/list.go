// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/termchat/internal/ui/styles"
	"github.com/jeranaias/termchat/internal/util"
)

// ListScreen is a full-screen modal view: a title row, item rows and a
// help row. Pickers and the transcript viewer draw through it.
type ListScreen struct {
	Title string
	Rows  []Line
	Help  string

	// Selected is the index into Rows drawn highlighted, or -1.
	Selected int
}

// DrawList draws a modal list screen. It is never throttled.
func (r *Renderer) DrawList(s ListScreen) {
	rows, cols := r.surface.Size()
	width := Layout{Rows: rows, Cols: cols}.Width()

	r.stats.Full++
	r.surface.Clear()
	r.surface.DrawText(0, 0, util.FitWidth(Sanitize(s.Title), width), styles.ToneHeader)

	capacity := ListCapacity(rows)
	for i, line := range s.Rows {
		if i >= capacity {
			break
		}
		text, tone := "  "+line.Text, line.Tone
		if i == s.Selected {
			text, tone = "> "+line.Text, styles.ToneSelected
		}
		r.surface.DrawText(1+i, 0, util.FitWidth(Sanitize(text), width), tone)
	}

	if rows > 1 {
		r.surface.DrawText(rows-1, 0, util.FitWidth(s.Help, width), styles.ToneHelp)
	}
	r.surface.MoveCursor(rows-1, 0)
	r.flush()
}

// DrawPage draws a plain text screen, used for the transcript viewer.
// Lines are drawn without selection markers.
func (r *Renderer) DrawPage(title string, lines []Line, help string) {
	rows, cols := r.surface.Size()
	width := Layout{Rows: rows, Cols: cols}.Width()

	r.stats.Full++
	r.surface.Clear()
	r.surface.DrawText(0, 0, util.FitWidth(Sanitize(title), width), styles.ToneHeader)
	capacity := ListCapacity(rows)
	for i, line := range lines {
		if i >= capacity {
			break
		}
		r.surface.DrawText(1+i, 0, util.FitWidth(line.Text, width), line.Tone)
	}
	if rows > 1 {
		r.surface.DrawText(rows-1, 0, util.FitWidth(help, width), styles.ToneHelp)
	}
	r.surface.MoveCursor(rows-1, 0)
	r.flush()
}
