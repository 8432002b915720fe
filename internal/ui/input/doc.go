// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package input decodes raw terminal bytes into logical keys.
//
// Decoder is a byte-at-a-time state machine covering UTF-8 reassembly,
// control bytes and the small set of escape sequences termchat binds
// (arrow keys). Reader drives a Decoder from an io.Reader on a goroutine
// and flushes incomplete sequences after a short delay, which is how a
// lone ESC is told apart from the start of an arrow key.
package input
