// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Styling for the plain (non-interactive) subcommand output.
//
// Colors are disabled for non-TTY output and when NO_COLOR is set
// (https://no-color.org/). FORCE_COLOR re-enables them.

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// colorProfile picks the profile used for output written to w.
func colorProfile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if os.Getenv("FORCE_COLOR") == "" && (!ok || !isTerminal(f)) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// =============================================================================
// OUTPUT STYLES
// =============================================================================

// outputStyles are bound to one writer so piped output stays plain.
type outputStyles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Dim       lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Separator lipgloss.Style
}

func newOutputStyles(w io.Writer) outputStyles {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(colorProfile(w)))
	return outputStyles{
		Title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Label:     r.NewStyle().Foreground(lipgloss.Color("245")),
		Value:     r.NewStyle().Foreground(lipgloss.Color("252")),
		Dim:       r.NewStyle().Foreground(lipgloss.Color("242")),
		Success:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Error:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Warning:   r.NewStyle().Foreground(lipgloss.Color("214")),
		Separator: r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// separator renders a horizontal rule of the given width.
func (s outputStyles) separator(width int) string {
	if width <= 0 {
		width = 60
	}
	return s.Separator.Render(strings.Repeat("=", width))
}
