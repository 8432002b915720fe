// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package templating

import (
	"regexp"
	"strings"
)

// =============================================================================
// TAG SYNTAX
// =============================================================================

const (
	tagOpen  = "{{:F"
	tagClose = "}}"

	// ContentMarker opens the fenced block an expanded tag produces.
	ContentMarker = "```file content:"
)

// tagPattern matches {{:F<path>}}. The path cannot contain '}'.
var tagPattern = regexp.MustCompile(`\{\{:F([^}]+)\}\}`)

// Tag is one file tag found in a text.
type Tag struct {
	// Raw is the tag as written, e.g. "{{:Fnotes.txt}}".
	Raw string
	// Path is the trimmed path inside the tag.
	Path string
	// Start and End are byte offsets of Raw in the text.
	Start int
	End   int
}

// MakeTag returns the tag for path.
func MakeTag(path string) string {
	return tagOpen + path + tagClose
}

// FindTags returns every tag in text in order of appearance.
func FindTags(text string) []Tag {
	if !strings.Contains(text, tagOpen) {
		return nil
	}
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	tags := make([]Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, Tag{
			Raw:   text[m[0]:m[1]],
			Path:  strings.TrimSpace(text[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
	}
	return tags
}

// HasTags reports whether text contains at least one tag.
func HasTags(text string) bool {
	return strings.Contains(text, tagOpen) && tagPattern.MatchString(text)
}

// replaceTags rewrites every tag in text with the result of fn.
func replaceTags(text string, fn func(Tag) string) string {
	tags := FindTags(text)
	if len(tags) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, t := range tags {
		sb.WriteString(text[last:t.Start])
		sb.WriteString(fn(t))
		last = t.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}
