// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for termchat.
//
// Conversations are saved as indented JSON files in a single history
// directory (default ~/.termchat/history/). Only user and assistant messages
// are persisted; file tags are stored in their compact {{:F<path>}} form.
//
// # Key Types
//
//   - Store: save, load, list and purge conversations
//   - StoredConversation: the on-disk document
//   - ConversationMeta: lightweight metadata for the history browser
//
// # Usage
//
//	store, err := storage.NewStore(dir, logger)
//	path, err := store.Save("", conv) // chat_<unix>.json
//	metas, err := store.List()        // newest first
//	conv, err := store.Load(metas[0].Path)
//
// Watch delivers debounced change notifications so an open history list
// can re-read the directory.
package storage
