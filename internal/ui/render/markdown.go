// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/ui/styles"
)

// Markdown renders assistant replies as formatted plain text for the
// transcript viewer. It uses glamour's "notty" style so the output holds
// no escape sequences and can be drawn with tones like any other line.
type Markdown struct {
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a markdown formatter.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Render formats text for width cells.
func (m *Markdown) Render(text string, width int) ([]string, error) {
	if m.renderer == nil || m.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return nil, err
		}
		m.renderer, m.width = tr, width
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines, nil
}

// ComposeTranscript is ComposeMessages for the transcript viewer. With a
// non-nil md, assistant turns are formatted as markdown under their label;
// everything else composes as in the message pane.
func ComposeTranscript(msgs []model.Message, width int, display DisplayFunc, md *Markdown) []Line {
	var lines []Line
	for _, msg := range msgs {
		if md == nil || msg.Role != model.RoleAssistant {
			lines = append(lines, ComposeMessage(msg, width, display)...)
			continue
		}
		formatted, err := md.Render(msg.Content, width)
		if err != nil {
			lines = append(lines, ComposeMessage(msg, width, display)...)
			continue
		}
		lines = append(lines, Line{Text: strings.TrimSpace(msg.Role.Label()), Tone: styles.ToneAssistant})
		for _, l := range formatted {
			for _, w := range Wrap(l, width) {
				lines = append(lines, Line{Text: w, Tone: styles.ToneAssistant})
			}
		}
	}
	return lines
}
