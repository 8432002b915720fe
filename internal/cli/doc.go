// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the termchat command line.
//
// The root command loads the configuration, opens the log file and the
// history store, puts the terminal into raw mode and runs a chat session
// until the user exits. Subcommands:
//
//	termchat providers   list configured provider profiles
//	termchat init        write a starter config file
//	termchat version     print version information
//
// Persistent flags --provider and --model pick the starting profile,
// --config names the config file, --history-dir and --log-level override
// the corresponding settings.
//
// Exit codes: 0 on success, 1 when configuration, the history directory or
// the terminal cannot be set up, 2 for usage errors.
package cli
