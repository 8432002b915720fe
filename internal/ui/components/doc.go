// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the stateful widgets of the chat client.

None of these types draw anything. They hold state and answer questions
about it; the render package turns that state into terminal rows.

# Widgets

LineEditor (lineeditor.go) - Single-line rune buffer with cursor and an
optional recall history. The main input records history, the command input
does not.

Selector (selector.go) - Generic clamped list with a scroll window that
follows the selection. Used for providers, saved conversations and files.

FileBrowser (filebrowser.go) - Selector over a directory listing with
drill-down and parent navigation. Parent at the filesystem root is a no-op.

Pager (transcript.go) - Scrollable pre-wrapped lines with an explicit
offset, used by the transcript viewer.

Suggest (suggest.go) - Fuzzy ranking used for "did you mean" hints.
*/
package components
