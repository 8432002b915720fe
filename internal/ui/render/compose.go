// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/templating"
	"github.com/jeranaias/termchat/internal/ui/styles"
)

// Line is one wrapped screen line and its tone.
type Line struct {
	Text string
	Tone styles.Tone
}

// DisplayFunc rewrites message text for display, e.g. shortening file
// placeholder tokens. Nil means identity.
type DisplayFunc func(string) string

// MessageTone returns the tone a message is drawn in.
func MessageTone(msg model.Message) styles.Tone {
	switch msg.Role {
	case model.RoleUser:
		return styles.ToneUser
	case model.RoleAssistant:
		return styles.ToneAssistant
	default:
		if msg.Error {
			return styles.ToneError
		}
		return styles.ToneSystem
	}
}

type segment struct {
	text string
	file bool
}

// splitFileContent separates inlined file blocks from the prose around
// them. A block runs from the content marker to the next closing fence.
func splitFileContent(content string) []segment {
	var segs []segment
	for {
		i := strings.Index(content, templating.ContentMarker)
		if i < 0 {
			segs = append(segs, segment{text: content})
			return segs
		}
		segs = append(segs, segment{text: strings.TrimSuffix(content[:i], "\n")})

		body := content[i+len(templating.ContentMarker):]
		j := strings.Index(body, "```")
		if j < 0 {
			segs = append(segs, segment{text: content[i:], file: true})
			return segs
		}
		end := i + len(templating.ContentMarker) + j + len("```")
		segs = append(segs, segment{text: content[i:end], file: true})
		content = strings.TrimPrefix(content[end:], "\n")
	}
}

// ComposeMessage produces the wrapped lines for one message: the role
// label is prefixed to the first line, explicit newlines are honored and
// every line is wrapped to width. Inlined file blocks are drawn in the
// file tone and are not passed through display.
func ComposeMessage(msg model.Message, width int, display DisplayFunc) []Line {
	tone := MessageTone(msg)
	label := msg.Role.Label()

	var lines []Line
	for i, seg := range splitFileContent(msg.Content) {
		if seg.file {
			for _, l := range WrapText(seg.text, width) {
				lines = append(lines, Line{Text: l, Tone: styles.ToneFile})
			}
			continue
		}
		if i > 0 && seg.text == "" {
			continue
		}
		text := seg.text
		if display != nil {
			text = display(text)
		}
		if i == 0 {
			text = label + text
		}
		for _, l := range WrapText(text, width) {
			lines = append(lines, Line{Text: l, Tone: tone})
		}
	}
	return lines
}

// ComposeMessages flattens msgs, oldest first, into wrapped lines.
func ComposeMessages(msgs []model.Message, width int, display DisplayFunc) []Line {
	var lines []Line
	for _, msg := range msgs {
		lines = append(lines, ComposeMessage(msg, width, display)...)
	}
	return lines
}

// tailStart returns the index of the first message of the streaming tail:
// the last two non-system messages and anything after them.
func tailStart(msgs []model.Message) int {
	seen := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleSystem {
			continue
		}
		seen++
		if seen == 2 {
			return i
		}
	}
	if seen == 1 {
		for i := range msgs {
			if msgs[i].Role != model.RoleSystem {
				return i
			}
		}
	}
	return len(msgs)
}

// bottomUp returns the lines that fit in height rows, newest last.
func bottomUp(lines []Line, height int) []Line {
	if height <= 0 {
		return nil
	}
	if len(lines) > height {
		return lines[len(lines)-height:]
	}
	return lines
}
