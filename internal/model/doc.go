// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation log and the messages it holds.
//
// # Key Types
//
//   - Role: message role enumeration (user, assistant, system)
//   - Message: one entry of the conversation
//   - Log: the ordered, mutex-guarded conversation shared by the foreground
//     session loop and the background streaming task
//
// # Concurrency
//
// Every Log method takes the lock. Readers get copies, never slices that
// alias the internal storage. Writers from a background exchange use the
// epoch returned by Epoch to make their writes conditional: Clear and Reset
// bump the epoch, so late updates from an exchange started before a clear
// or load are discarded.
//
//	epoch := log.Epoch()
//	id := log.Append(model.NewMessage(model.RoleAssistant, "Thinking..."))
//	// later, from another goroutine
//	log.ReplaceContent(epoch, id, partial)
package model
