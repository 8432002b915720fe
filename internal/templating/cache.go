// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package templating

import (
	"sync"
	"time"
)

// =============================================================================
// FILE CACHE
// =============================================================================

// FileCache keeps decoded file contents keyed by path. An entry is valid only
// while the file's modification time and size are unchanged. Every send
// re-expands the tags of the whole context window, so the same files are read
// repeatedly.
type FileCache struct {
	mu          sync.Mutex
	entries     map[string]*cacheEntry
	accessOrder []string // least recently used first
	maxEntries  int
	maxBytes    int64
	curBytes    int64

	hits   int
	misses int
}

type cacheEntry struct {
	content string
	modTime time.Time
	size    int64
}

// FileCacheStats holds cache statistics.
type FileCacheStats struct {
	Hits       int
	Misses     int
	EntryCount int
	TotalSize  int64
}

// NewFileCache creates a cache bounded by entry count and total bytes.
func NewFileCache(maxEntries int, maxBytes int64) *FileCache {
	if maxEntries <= 0 {
		maxEntries = 32
	}
	if maxBytes <= 0 {
		maxBytes = 32 * 1024 * 1024
	}
	return &FileCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

// Get returns the cached content for path if modTime and size still match.
func (fc *FileCache) Get(path string, modTime time.Time, size int64) (string, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	e, ok := fc.entries[path]
	if !ok || !e.modTime.Equal(modTime) || e.size != size {
		if ok {
			fc.removeLocked(path)
		}
		fc.misses++
		return "", false
	}
	fc.touchLocked(path)
	fc.hits++
	return e.content, true
}

// Put stores content for path.
func (fc *FileCache) Put(path, content string, modTime time.Time, size int64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	n := int64(len(content))
	if n > fc.maxBytes {
		return
	}
	fc.removeLocked(path)
	for len(fc.accessOrder) > 0 && (fc.curBytes+n > fc.maxBytes || len(fc.entries) >= fc.maxEntries) {
		fc.removeLocked(fc.accessOrder[0])
	}
	fc.entries[path] = &cacheEntry{content: content, modTime: modTime, size: size}
	fc.curBytes += n
	fc.accessOrder = append(fc.accessOrder, path)
}

// Stats returns cache statistics.
func (fc *FileCache) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return FileCacheStats{
		Hits:       fc.hits,
		Misses:     fc.misses,
		EntryCount: len(fc.entries),
		TotalSize:  fc.curBytes,
	}
}

// removeLocked removes an entry (must hold lock).
func (fc *FileCache) removeLocked(path string) {
	e, ok := fc.entries[path]
	if !ok {
		return
	}
	fc.curBytes -= int64(len(e.content))
	delete(fc.entries, path)
	for i, p := range fc.accessOrder {
		if p == path {
			fc.accessOrder = append(fc.accessOrder[:i], fc.accessOrder[i+1:]...)
			break
		}
	}
}

// touchLocked moves path to the most recently used end (must hold lock).
func (fc *FileCache) touchLocked(path string) {
	for i, p := range fc.accessOrder {
		if p == path {
			fc.accessOrder = append(fc.accessOrder[:i], fc.accessOrder[i+1:]...)
			break
		}
	}
	fc.accessOrder = append(fc.accessOrder, path)
}
