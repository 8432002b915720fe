// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package templating

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// EXPANDER
// =============================================================================

// Expander turns tagged text into the text sent to a provider.
type Expander struct {
	fetcher *Fetcher
	table   *Table
}

// NewExpander creates an expander. table may be nil.
func NewExpander(fetcher *Fetcher, table *Table) *Expander {
	if table == nil {
		table = NewTableAt("")
	}
	return &Expander{fetcher: fetcher, table: table}
}

// Expansion is the result of expanding one text.
type Expansion struct {
	// Text is the expanded text.
	Text string
	// Tags is the number of tags found.
	Tags int
	// Errors holds one entry per tag that became a diagnostic.
	Errors []TagError
}

// TagError is a tag that could not be expanded.
type TagError struct {
	Tag  Tag
	Path string
	Err  error
}

// Expand replaces every tag in text. Each tag is resolved independently.
func (e *Expander) Expand(text string) Expansion {
	result := Expansion{Text: text}
	if !HasTags(text) {
		return result
	}
	result.Text = replaceTags(text, func(tag Tag) string {
		result.Tags++
		path := e.table.Resolve(tag)
		content, err := e.fetcher.FetchFile(path)
		if err != nil {
			result.Errors = append(result.Errors, TagError{Tag: tag, Path: tag.Path, Err: err})
			return e.diagnostic(tag.Path, err)
		}
		return FormatContent(tag.Path, content)
	})
	return result
}

// FormatContent renders an injected file the way providers receive it.
func FormatContent(path, content string) string {
	var sb strings.Builder
	sb.Grow(len(content) + len(path) + 32)
	sb.WriteString("\n")
	sb.WriteString(ContentMarker)
	sb.WriteString(" ")
	sb.WriteString(path)
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n```\n")
	return sb.String()
}

// diagnostic renders the placeholder that stands in for a failed tag.
func (e *Expander) diagnostic(path string, err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return fmt.Sprintf("[file not found: %s]", path)
	case errors.Is(err, ErrFileTooLarge):
		return fmt.Sprintf("[file too large (> %dKB): %s]", e.fetcher.MaxFileSize/1024, path)
	default:
		detail := strings.TrimPrefix(err.Error(), ErrFileRead.Error()+": ")
		return fmt.Sprintf("[read error: %s]", detail)
	}
}
