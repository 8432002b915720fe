// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the session controller of the termchat client.

# Controller (controller.go)

The Controller runs the foreground loop. It selects over decoded keys,
bridge updates, terminal resizes and history directory changes, and it is
the only code that draws. Its modes form a small state machine:

	Normal -> Command        Ctrl+L, the main input is parked
	Command -> Normal        Enter runs the command, Esc restores the input
	Normal -> ConfirmPurge   "clean", the next key answers
	Command -> pickers       file, provider, load, history

Esc in Normal mode ends the session.

# Commands (commands.go)

Commands live in a registry of name, aliases and handler. A command word
resolves by exact name or alias first, then by unique prefix.

# Streaming (bridge.go, accumulator.go)

Sending appends the typed message and a "Thinking..." placeholder, then
hands the trailing window of the conversation, with file tags expanded, to
the Bridge. The bridge goroutine overwrites the placeholder as deltas
arrive and publishes an Update for each change. Every log write carries
the epoch and placeholder ID of its exchange, so clearing or loading a
conversation while a reply streams discards the late writes.

Only one exchange runs at a time. A send while a reply is still streaming
is rejected with a notice and the typed text stays in the input.
*/
package chat
