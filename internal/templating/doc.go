// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package templating handles file tags in user messages.
//
// A file tag has the form {{:F<path>}}. Tags stay compact in the
// conversation, on screen and on disk. Only the text sent to a provider is
// expanded, each tag replaced by a fenced block holding the file content:
//
//	```file content: notes.txt
//	<content>
//	```
//
// or by a bracketed diagnostic when the file is missing, larger than the
// configured limit, or unreadable. A failing tag never aborts the send.
//
// # Key Types
//
//   - Tag: one parsed tag and its position
//   - Table: tokens inserted through the file picker, mapped to full paths
//   - Fetcher: size-checked, BOM-aware file reads with an mtime cache
//   - Expander: turns tagged text into provider text
//
// # Usage
//
//	table := templating.NewTable()
//	token := table.Add("/home/me/notes.txt")
//	exp := templating.NewExpander(templating.NewFetcher(1<<20, ""), table)
//	wire := exp.Expand("summarize " + token).Text
package templating
