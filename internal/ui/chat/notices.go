// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/termchat/internal/cloud"
)

// =============================================================================
// NOTICE TEXTS
// =============================================================================

const (
	// ThinkingPlaceholder is the assistant message shown until the first delta.
	ThinkingPlaceholder = "Thinking..."

	// NoticeNoResponse replaces a reply that produced no content.
	NoticeNoResponse = "<no valid response from AI>"

	// MessageTruncatedMarker is appended to a typed message cut at the limit.
	MessageTruncatedMarker = "\n...(message too long, truncated)"

	// noticeTruncatedMarker is appended to a notice cut at the limit.
	noticeTruncatedMarker = " ...(message too long, truncated)"

	NoticeCleared        = "Conversation cleared"
	NoticePurgeConfirm   = "Delete ALL saved conversations? (y/n)"
	NoticePurged         = "All saved conversations deleted"
	NoticePurgeCancelled = "Purge cancelled"
	NoticeBusy           = "Still waiting for the previous reply; message not sent"
	NoticeHistoryEmpty   = "No saved conversations"

	helpNormal  = "Ctrl+L: command | Enter: send | Up/Down: recall | Esc: quit"
	helpCommand = "Commands: file provider clear save load history clean exit | Enter: run | Esc: back"
	helpList    = "Enter: select | Up/Down: move | Esc: cancel"
	helpFiles   = "Enter: select | Up/Down: move | Left: parent | Esc: cancel"
	helpHistory = "Up/Down: move | Enter: view | Esc: back"
	helpPage    = "Up/Down: scroll | Esc: back"

	promptNormal  = "> "
	promptCommand = "Command: "
)

// startupNotices are shown once when a session begins.
var startupNotices = []string{
	"Tip: use {{:Ffilename}} in a message to insert the file's contents",
	"Commands (Ctrl+L): file to pick a file, provider to switch API, clear to reset, exit to quit",
	"More commands: save [name], load [name], history to browse saved conversations, clean to delete them",
}

// headerText is the title row for the active profile. Only the last path
// segment of the model name is shown.
func headerText(p *cloud.Profile) string {
	if p == nil {
		return "termchat"
	}
	model := p.Model
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	h := fmt.Sprintf("termchat (provider: %s, model: %s)", p.Name, model)
	if p.Dialect == cloud.DialectJSON {
		h += " [single]"
	}
	return h
}

// =============================================================================
// ERROR DESCRIPTIONS
// =============================================================================

// describeError turns an exchange error into the text of a system notice.
func describeError(err error) string {
	var statusErr *cloud.StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "API error: " + statusErr.Error()
	case errors.Is(err, cloud.ErrIncompatibleResponse):
		return cloud.ErrIncompatibleResponse.Error()
	case errors.Is(err, cloud.ErrTransport):
		return "Network error: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
