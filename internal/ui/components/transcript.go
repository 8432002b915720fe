// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/jeranaias/termchat/internal/ui/render"
)

// =============================================================================
// TRANSCRIPT PAGER
// =============================================================================

// Pager scrolls a fixed set of pre-wrapped lines with an explicit offset.
// The history preview and the full transcript view both use it.
type Pager struct {
	lines   []render.Line
	scrollY int
	height  int
}

// NewPager creates an empty pager.
func NewPager() *Pager {
	return &Pager{height: 1}
}

// SetLines replaces the content and scrolls to the top.
func (p *Pager) SetLines(lines []render.Line) {
	p.lines = lines
	p.scrollY = 0
}

// SetVisibleRows sets the page height.
func (p *Pager) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	p.height = n
	p.clamp()
}

// Len returns the total line count.
func (p *Pager) Len() int { return len(p.lines) }

// Offset returns the first visible line index.
func (p *Pager) Offset() int { return p.scrollY }

func (p *Pager) maxScrollY() int {
	if m := len(p.lines) - p.height; m > 0 {
		return m
	}
	return 0
}

func (p *Pager) clamp() {
	if p.scrollY > p.maxScrollY() {
		p.scrollY = p.maxScrollY()
	}
	if p.scrollY < 0 {
		p.scrollY = 0
	}
}

// ScrollUp scrolls up by the specified number of lines.
func (p *Pager) ScrollUp(lines int) {
	p.scrollY -= lines
	p.clamp()
}

// ScrollDown scrolls down by the specified number of lines.
func (p *Pager) ScrollDown(lines int) {
	p.scrollY += lines
	p.clamp()
}

// PageUp scrolls up by one page.
func (p *Pager) PageUp() { p.ScrollUp(p.height) }

// PageDown scrolls down by one page.
func (p *Pager) PageDown() { p.ScrollDown(p.height) }

// ScrollToTop jumps to the first line.
func (p *Pager) ScrollToTop() { p.scrollY = 0 }

// ScrollToBottom jumps to the last page.
func (p *Pager) ScrollToBottom() { p.scrollY = p.maxScrollY() }

// AtTop reports whether the first line is visible.
func (p *Pager) AtTop() bool { return p.scrollY == 0 }

// AtBottom reports whether the last line is visible.
func (p *Pager) AtBottom() bool { return p.scrollY >= p.maxScrollY() }

// Visible returns the lines on the current page.
func (p *Pager) Visible() []render.Line {
	end := p.scrollY + p.height
	if end > len(p.lines) {
		end = len(p.lines)
	}
	return p.lines[p.scrollY:end]
}

// Position returns a "[current/total]" indicator, or "" when everything fits.
func (p *Pager) Position() string {
	if p.maxScrollY() == 0 {
		return ""
	}
	return fmt.Sprintf("[%d/%d]", p.scrollY+1, p.maxScrollY()+1)
}
