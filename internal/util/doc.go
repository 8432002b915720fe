// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across termchat.
//
// # Key Functions
//
// String Utilities:
//   - ClampRunes: cut a string at a rune limit and append a marker
//   - TruncateRunes: rune-safe truncation with an ellipsis for previews
//   - OneLine: collapse line breaks for single-row labels
//   - Width, FitWidth: terminal cell width helpers backed by go-runewidth
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: resolve a leading "~" in configured paths
//
// # Usage
//
//	// Clamp an assistant reply to the configured maximum
//	text, cut := util.ClampRunes(reply, 5000, marker)
//
//	// Write a conversation file atomically
//	err := util.AtomicWriteFile(path, data, 0644)
package util
