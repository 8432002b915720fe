// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for termchat.

# Tones

Everything drawn on screen carries a Tone (header, rule, user, assistant,
system, error, file, help, selected). Layout code never picks colors;
it picks tones.

# Theme

A Theme maps tones to lipgloss styles for one output:

	theme := styles.NewTheme(os.Stdout)
	line := theme.Render(styles.ToneUser, "You: hello")

Tests use NewThemeWithProfile(w, termenv.Ascii, true) to get plain text.

# Colors (colors.go)

All colors are lipgloss.AdaptiveColor pairs so light and dark terminals
both stay readable.
*/
package styles
