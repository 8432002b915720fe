// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Tone is the semantic color class of a piece of drawn text. Renderers
// work in tones; only the Theme knows what a tone looks like.
type Tone int

const (
	ToneDefault Tone = iota
	ToneHeader
	ToneRule
	ToneUser
	ToneAssistant
	ToneSystem
	ToneError
	ToneFile
	ToneHelp
	ToneSelected
)

var toneNames = [...]string{
	ToneDefault:   "default",
	ToneHeader:    "header",
	ToneRule:      "rule",
	ToneUser:      "user",
	ToneAssistant: "assistant",
	ToneSystem:    "system",
	ToneError:     "error",
	ToneFile:      "file",
	ToneHelp:      "help",
	ToneSelected:  "selected",
}

func (t Tone) String() string {
	if t >= 0 && int(t) < len(toneNames) {
		return toneNames[t]
	}
	return "unknown"
}

// Theme holds one lipgloss style per tone, bound to a renderer for a
// specific output so color detection follows the real terminal.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	renderer *lipgloss.Renderer
	styles   map[Tone]lipgloss.Style
}

// NewTheme creates a theme for output w, detecting its color profile and
// background.
func NewTheme(w io.Writer) *Theme {
	r := lipgloss.NewRenderer(w)
	t := &Theme{
		IsDark:       r.HasDarkBackground(),
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.initStyles()
	return t
}

// NewThemeWithProfile creates a theme with a fixed profile. termenv.Ascii
// yields plain, unstyled text.
func NewThemeWithProfile(w io.Writer, profile termenv.Profile, dark bool) *Theme {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(dark)
	t := &Theme{
		IsDark:       dark,
		ColorProfile: profile,
		renderer:     r,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	s := t.renderer.NewStyle
	t.styles = map[Tone]lipgloss.Style{
		ToneDefault:   s().Foreground(TextPrimary),
		ToneHeader:    s().Bold(true).Foreground(Cyan),
		ToneRule:      s().Foreground(Overlay),
		ToneUser:      s().Foreground(Cyan),
		ToneAssistant: s().Foreground(Purple),
		ToneSystem:    s().Foreground(Amber),
		ToneError:     s().Bold(true).Foreground(Rose),
		ToneFile:      s().Foreground(Emerald),
		ToneHelp:      s().Foreground(TextMuted),
		ToneSelected:  s().Bold(true).Foreground(TextPrimary).Background(SelectionBg),
	}
}

// Style returns the style for tone, falling back to the default tone.
func (t *Theme) Style(tone Tone) lipgloss.Style {
	if st, ok := t.styles[tone]; ok {
		return st
	}
	return t.styles[ToneDefault]
}

// Render styles text for tone. Text must be a single line.
func (t *Theme) Render(tone Tone, text string) string {
	if text == "" {
		return ""
	}
	return t.Style(tone).Render(text)
}
