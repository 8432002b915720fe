// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render composes the chat screen onto a Surface.
//
// The message pane has no scroll state: messages are wrapped oldest first
// and placed bottom-up, so the newest line always sits on the last pane
// row and older lines fall off the top. Three redraw paths exist:
//
//   - Redraw: full screen, throttled unless forced
//   - RedrawInput: rule, input and help rows only (every keystroke)
//   - RedrawStream: re-wraps just the streaming tail
//
// Modal pickers and the transcript viewer use DrawList and DrawPage.
package render
