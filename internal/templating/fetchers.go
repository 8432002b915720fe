// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package templating

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrFileNotFound is returned when a file doesn't exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when a file exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrFileRead is returned for any other failure to produce the content.
	ErrFileRead = errors.New("read error")
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// =============================================================================
// FETCHER
// =============================================================================

// DefaultMaxFileSize is the size limit used when none is configured.
const DefaultMaxFileSize = 1024 * 1024

// Fetcher reads files for tag expansion.
type Fetcher struct {
	// MaxFileSize is the largest file that will be read, in bytes.
	MaxFileSize int64

	// WorkingDirectory is the base for relative paths. Empty means the
	// process working directory.
	WorkingDirectory string

	cache *FileCache
}

// NewFetcher creates a fetcher with its own cache.
func NewFetcher(maxFileSize int64, wd string) *Fetcher {
	return &Fetcher{
		MaxFileSize:      maxFileSize,
		WorkingDirectory: wd,
		cache:            NewFileCache(0, 0),
	}
}

// CacheStats returns statistics of the fetcher's cache.
func (f *Fetcher) CacheStats() FileCacheStats {
	if f.cache == nil {
		return FileCacheStats{}
	}
	return f.cache.Stats()
}

// FetchFile returns the text of path. The size is checked before the file
// is read. UTF-16 files with a byte order mark are converted and a UTF-8 BOM
// is dropped; anything else must be valid UTF-8.
func (f *Fetcher) FetchFile(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) && f.WorkingDirectory != "" {
		full = filepath.Join(f.WorkingDirectory, full)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrFileRead, path)
	}
	if info.Size() > f.MaxFileSize {
		return "", ErrFileTooLarge
	}

	if f.cache != nil {
		if content, ok := f.cache.Get(full, info.ModTime(), info.Size()); ok {
			return content, nil
		}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}

	if f.cache != nil {
		f.cache.Put(full, text, info.ModTime(), info.Size())
	}
	return text, nil
}

// decodeText converts file bytes to a UTF-8 string.
func decodeText(data []byte) (string, error) {
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		// ExpectBOM lets the BOM choose the byte order and strips it.
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	data = bytes.TrimPrefix(data, bomUTF8)
	if !utf8.Valid(data) {
		return "", errors.New("not valid UTF-8 text")
	}
	return string(data), nil
}
