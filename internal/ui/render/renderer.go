// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/templating"
	"github.com/jeranaias/termchat/internal/ui/styles"
	"github.com/jeranaias/termchat/internal/util"
)

const (
	ruleChar = "─"
	ellipsis = "..."
)

// Frame is everything needed to draw the chat screen once. The controller
// builds a fresh Frame from its state for every redraw.
type Frame struct {
	Header   string
	Messages []model.Message
	Display  DisplayFunc

	Prompt string
	Input  string
	Cursor int // rune offset into Input

	Help string
}

// Stats counts redraws by kind.
type Stats struct {
	Full        int
	Dropped     int
	Partial     int
	Incremental int
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer draws Frames onto a Surface. It is used only from the
// foreground loop.
type Renderer struct {
	surface  Surface
	throttle *Throttle

	// Line count of the streaming tail at the last full or incremental
	// draw; -1 when unknown.
	tailLines int

	stats Stats
}

// NewRenderer creates a renderer. A nil throttle selects DefaultThrottle.
func NewRenderer(surface Surface, throttle *Throttle) *Renderer {
	if throttle == nil {
		throttle = NewThrottle(DefaultThrottle)
	}
	return &Renderer{surface: surface, throttle: throttle, tailLines: -1}
}

// Stats returns redraw counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Surface returns the drawing target.
func (r *Renderer) Surface() Surface {
	return r.surface
}

func (r *Renderer) layout() Layout {
	rows, cols := r.surface.Size()
	return Layout{Rows: rows, Cols: cols}
}

// Redraw performs a full redraw unless it is throttled. Forced redraws
// always run. It reports whether the screen was drawn.
func (r *Renderer) Redraw(f *Frame, force bool) bool {
	if !r.throttle.Allow(force) {
		r.stats.Dropped++
		return false
	}
	r.full(f)
	return true
}

func (r *Renderer) full(f *Frame) {
	r.stats.Full++
	l := r.layout()
	r.surface.Clear()
	if !l.Fits() {
		r.drawTooSmall(l)
		return
	}

	width := l.Width()
	r.surface.DrawText(l.HeaderRow(), 0, util.FitWidth(Sanitize(f.Header), width), styles.ToneHeader)
	r.drawRule(l, l.TopRuleRow())

	lines := ComposeMessages(f.Messages, width, f.Display)
	r.drawPane(l, bottomUp(lines, l.PaneHeight()), l.PaneHeight())
	r.tailLines = len(ComposeMessages(f.Messages[tailStart(f.Messages):], width, f.Display))

	r.drawInputRegion(l, f)
	r.flush()
}

// RedrawInput repaints only the bottom rule, input and help rows. Used
// after every keystroke.
func (r *Renderer) RedrawInput(f *Frame) {
	l := r.layout()
	if !l.Fits() {
		r.full(f)
		return
	}
	r.stats.Partial++
	r.drawInputRegion(l, f)
	r.flush()
}

// RedrawStream is the incremental redraw used while a reply streams in.
// Only the last two non-system messages (and anything after them) are
// re-wrapped; rows above them are left alone. When the tail's height
// changed the older rows would be stale, so a full redraw is attempted
// first, subject to the throttle.
func (r *Renderer) RedrawStream(f *Frame) {
	l := r.layout()
	if !l.Fits() || r.tailLines < 0 {
		r.Redraw(f, true)
		return
	}

	width := l.Width()
	lines := ComposeMessages(f.Messages[tailStart(f.Messages):], width, f.Display)
	if len(lines) != r.tailLines && r.throttle.Allow(false) {
		r.full(f)
		return
	}

	r.stats.Incremental++
	height := l.PaneHeight()
	estimate := len(lines)
	if r.tailLines > estimate {
		estimate = r.tailLines
	}
	if estimate > height {
		estimate = height
	}
	top := l.PaneBottom() - estimate + 1
	for row := top; row <= l.PaneBottom(); row++ {
		r.surface.ClearLine(row)
	}
	r.drawPane(l, bottomUp(lines, estimate), estimate)
	r.tailLines = len(lines)

	r.drawInputRegion(l, f)
	r.flush()
}

// drawPane places lines so the last one sits on the bottom pane row.
// Only the bottom `rows` rows are touched.
func (r *Renderer) drawPane(l Layout, lines []Line, rows int) {
	row := l.PaneBottom()
	for i := len(lines) - 1; i >= 0 && row > l.PaneBottom()-rows; i-- {
		r.surface.DrawText(row, 0, util.FitWidth(lines[i].Text, l.Width()), lines[i].Tone)
		row--
	}
}

func (r *Renderer) drawRule(l Layout, row int) {
	r.surface.DrawText(row, 0, strings.Repeat(ruleChar, l.Width()), styles.ToneRule)
}

func (r *Renderer) drawInputRegion(l Layout, f *Frame) {
	for _, row := range []int{l.BottomRuleRow(), l.InputRow(), l.HelpRow()} {
		r.surface.ClearLine(row)
	}
	r.drawRule(l, l.BottomRuleRow())

	line, col := InputLine(f.Prompt, f.Input, f.Cursor, f.Display, l.Width())
	r.surface.DrawText(l.InputRow(), 0, line, styles.ToneDefault)
	r.surface.DrawText(l.HelpRow(), 0, util.FitWidth(f.Help, l.Width()), styles.ToneHelp)
	r.surface.MoveCursor(l.InputRow(), col)
}

func (r *Renderer) drawTooSmall(l Layout) {
	r.surface.DrawText(0, 0, util.FitWidth("terminal too small", l.Width()), styles.ToneError)
	r.flush()
}

func (r *Renderer) flush() {
	// Write errors surface again on the next frame; nothing to do here.
	_ = r.surface.Flush()
}

// InputLine lays out the prompt and input text in width cells and returns
// the line and the cursor column. When the text before the cursor does not
// fit, the start is elided with "..." so the cursor stays visible.
func InputLine(prompt, text string, cursor int, display DisplayFunc, width int) (string, int) {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	before := string(runes[:cursor])
	if display != nil {
		before = display(tagBoundary(text, before, display))
		text = display(text)
	}
	before, text = Sanitize(before), Sanitize(text)

	pw := util.Width(prompt)
	avail := width - pw
	if avail <= len(ellipsis) {
		return util.FitWidth(prompt, width), util.Width(util.FitWidth(prompt, width))
	}

	bw := util.Width(before)
	if bw < avail {
		return prompt + util.FitWidth(text, avail), pw + bw
	}

	rest, skipped := skipCells(text, bw-avail+1+len(ellipsis))
	shown := util.FitWidth(ellipsis+rest, avail)
	return prompt + shown, pw + len(ellipsis) + bw - skipped
}

// tagBoundary extends before, a prefix of text, to the end of a tag it
// ends inside of when display rewrites that tag. A cursor inside a
// shortened token is drawn after it.
func tagBoundary(text, before string, display DisplayFunc) string {
	off := len(before)
	for _, tag := range templating.FindTags(text) {
		if tag.Start < off && off < tag.End && display(tag.Raw) != tag.Raw {
			return text[:tag.End]
		}
	}
	return before
}
