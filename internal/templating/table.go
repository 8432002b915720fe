// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package templating

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Table maps placeholder tokens to the files they stand for. Tokens are
// ordinary tags whose path is shortened relative to the working directory
// when possible, so a typed tag and a picked file behave the same way.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string // token -> path
	wd      string
}

// NewTable creates an empty table relative to the current working directory.
func NewTable() *Table {
	wd, _ := os.Getwd()
	return NewTableAt(wd)
}

// NewTableAt creates an empty table relative to wd.
func NewTableAt(wd string) *Table {
	return &Table{entries: make(map[string]string), wd: wd}
}

// Add registers path and returns the token to insert into the input.
func (t *Table) Add(path string) string {
	token := MakeTag(t.shorten(path))
	t.mu.Lock()
	t.entries[token] = path
	t.mu.Unlock()
	return token
}

// Lookup returns the path a token stands for.
func (t *Table) Lookup(token string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.entries[token]
	return p, ok
}

// Len returns the number of registered tokens.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Clear forgets every token.
func (t *Table) Clear() {
	t.mu.Lock()
	t.entries = make(map[string]string)
	t.mu.Unlock()
}

// Rebuild replaces the table with the tags found in texts. It is used after
// a conversation is loaded from disk.
func (t *Table) Rebuild(texts ...string) {
	entries := make(map[string]string)
	for _, text := range texts {
		for _, tag := range FindTags(text) {
			entries[tag.Raw] = t.resolve(tag.Path)
		}
	}
	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// Display returns text with every registered token shortened to the file's
// base name. Unregistered tags are left as typed.
func (t *Table) Display(text string) string {
	if !HasTags(text) {
		return text
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return replaceTags(text, func(tag Tag) string {
		if p, ok := t.entries[tag.Raw]; ok {
			return MakeTag(filepath.Base(p))
		}
		return tag.Raw
	})
}

// Resolve returns the path a tag refers to: the registered path for known
// tokens, otherwise the tag's own path.
func (t *Table) Resolve(tag Tag) string {
	t.mu.RLock()
	p, ok := t.entries[tag.Raw]
	t.mu.RUnlock()
	if ok {
		return p
	}
	return tag.Path
}

func (t *Table) shorten(path string) string {
	if t.wd == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(t.wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (t *Table) resolve(path string) string {
	if filepath.IsAbs(path) || t.wd == "" {
		return path
	}
	return filepath.Join(t.wd, path)
}
