// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// FILE BROWSER
// =============================================================================

// FileEntry is one row of a directory listing.
type FileEntry struct {
	Name  string
	Path  string
	IsDir bool
	Up    bool // the ".." row
}

// Label renders the entry for a list row.
func (e FileEntry) Label() string {
	switch {
	case e.Up:
		return "../"
	case e.IsDir:
		return e.Name + "/"
	default:
		return e.Name
	}
}

// FileBrowser is a Selector over a directory with drill-down into
// subdirectories and parent navigation.
type FileBrowser struct {
	*Selector[FileEntry]
	dir string
	err error
}

// NewFileBrowser creates a browser. Call Open before use.
func NewFileBrowser() *FileBrowser {
	return &FileBrowser{Selector: NewSelector(FileEntry.Label)}
}

// Dir returns the listed directory.
func (b *FileBrowser) Dir() string { return b.dir }

// Err returns the error from the last listing attempt, if any.
func (b *FileBrowser) Err() error { return b.err }

// AtRoot reports whether the listed directory is a filesystem root.
func (b *FileBrowser) AtRoot() bool {
	return isRoot(b.dir)
}

func isRoot(dir string) bool {
	return filepath.Dir(dir) == dir
}

// Open lists dir, replacing the entries and resetting the selection. On a
// read error the current listing is kept and Err reports the failure.
func (b *FileBrowser) Open(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		b.err = err
		return err
	}
	entries, err := listDir(abs)
	if err != nil {
		b.err = err
		return err
	}
	b.err = nil
	b.dir = abs
	b.SetItems(entries)
	return nil
}

// Activate acts on the highlighted entry: directories (and "..") are
// opened in place, files are returned with done set. A directory that
// cannot be listed leaves the current listing in place and its error is
// returned.
func (b *FileBrowser) Activate() (path string, done bool, err error) {
	entry, ok := b.Selected()
	if !ok {
		return "", false, nil
	}
	if entry.Up {
		if !b.AtRoot() && !b.Parent() {
			return "", false, b.err
		}
		return "", false, nil
	}
	if entry.IsDir {
		return "", false, b.Open(entry.Path)
	}
	return entry.Path, true, nil
}

// Parent lists the parent directory and highlights the directory we came
// from. At the root it does nothing and reports false.
func (b *FileBrowser) Parent() bool {
	if b.dir == "" || isRoot(b.dir) {
		return false
	}
	child := b.dir
	if err := b.Open(filepath.Dir(b.dir)); err != nil {
		return false
	}
	for i, e := range b.Items() {
		if e.Path == child {
			b.Select(i)
			break
		}
	}
	return true
}

func listDir(dir string) ([]FileEntry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]FileEntry, 0, len(des)+1)
	for _, de := range des {
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			if fi, err := os.Stat(filepath.Join(dir, de.Name())); err == nil {
				isDir = fi.IsDir()
			}
		}
		entries = append(entries, FileEntry{
			Name:  de.Name(),
			Path:  filepath.Join(dir, de.Name()),
			IsDir: isDir,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	if !isRoot(dir) {
		up := FileEntry{Name: "..", Path: filepath.Dir(dir), IsDir: true, Up: true}
		entries = append([]FileEntry{up}, entries...)
	}
	return entries, nil
}
