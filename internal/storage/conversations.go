// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for termchat.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/termchat/internal/util"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultTitle is used when a conversation has no user message.
	DefaultTitle = "Untitled conversation"

	// DefaultProvider and DefaultModel fill files written without provider info.
	DefaultProvider = "OpenRouter"
	DefaultModel    = "deepseek/deepseek-r1:free"

	// titleRunes is how much of the first user message becomes the title.
	titleRunes = 20

	// previewRunes is how much of the first user message the history list shows.
	previewRunes = 30

	fileExt = ".json"
)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation is the on-disk shape of a saved conversation.
type StoredConversation struct {
	Timestamp int64           `json:"timestamp"`
	Title     string          `json:"title"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Messages  []StoredMessage `json:"messages"`
}

// StoredMessage represents a persisted message. Only "user" and "assistant"
// roles are ever written or restored.
type StoredMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SavedAt returns the save time as a local time.Time.
func (c *StoredConversation) SavedAt() time.Time {
	return time.Unix(c.Timestamp, 0)
}

// FirstUserMessage returns the content of the first user message, or "".
func (c *StoredConversation) FirstUserMessage() string {
	for _, msg := range c.Messages {
		if msg.Role == "user" {
			return msg.Content
		}
	}
	return ""
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	Name     string
	Path     string
	ModTime  time.Time
	SavedAt  time.Time
	Title    string
	Preview  string // first user message, newlines flattened
	Messages int

	// Corrupt is set when the file could not be parsed. Such entries are
	// still listed, by file name only.
	Corrupt bool
}

// Label formats the entry for the history browser:
// "2006-01-02 15:04 - title | User: first message...".
func (m ConversationMeta) Label() string {
	if m.Corrupt {
		return m.Name
	}
	label := m.SavedAt.Format("2006-01-02 15:04") + " - " + m.Title
	if m.Preview != "" {
		label += " | User: " + util.TruncateRunes(m.Preview, previewRunes)
	}
	return label
}

// DeriveTitle builds a title from the first user message: newlines become
// spaces and the text is cut to the first 20 characters plus "...".
func DeriveTitle(msgs []StoredMessage) string {
	for _, msg := range msgs {
		if msg.Role != "user" {
			continue
		}
		flat := util.OneLine(msg.Content)
		runes := []rune(flat)
		if len(runes) > titleRunes {
			runes = runes[:titleRunes]
		}
		return string(runes) + "..."
	}
	return DefaultTitle
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store handles conversation persistence in a single directory.
type Store struct {
	// BaseDir is the directory holding saved conversations.
	// Default: ~/.termchat/history/
	BaseDir string

	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a store rooted at baseDir, creating the directory.
func NewStore(baseDir string, logger *zap.Logger) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage: empty history directory")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, &ConversationError{Message: "cannot create history directory", Err: err}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		BaseDir: baseDir,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// FileName normalizes a user supplied conversation name. An empty name
// yields chat_<unix>.json; a missing ".json" suffix is appended. Names
// that would escape the history directory are rejected.
func (s *Store) FileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("chat_%d%s", s.now().Unix(), fileExt), nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasSuffix(name, fileExt) {
		name += fileExt
	}
	return name, nil
}

// Save writes conv under name and returns the full path. Timestamp and
// Title are filled in when unset. Messages with other roles are dropped.
func (s *Store) Save(name string, conv *StoredConversation) (string, error) {
	fileName, err := s.FileName(name)
	if err != nil {
		return "", err
	}

	out := *conv
	out.Messages = persistable(conv.Messages)
	if out.Timestamp == 0 {
		out.Timestamp = s.now().Unix()
	}
	if out.Title == "" {
		out.Title = DeriveTitle(out.Messages)
	}

	// Keep file content human readable: no < escapes for tags and code.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	path := filepath.Join(s.BaseDir, fileName)
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", &ConversationError{Message: "save failed", Err: err}
	}

	s.logger.Info("conversation saved",
		zap.String("path", path),
		zap.Int("messages", len(out.Messages)))
	return path, nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// LoadNamed loads a conversation by file name from the history directory.
func (s *Store) LoadNamed(name string) (*StoredConversation, string, error) {
	fileName, err := s.FileName(name)
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(s.BaseDir, fileName)
	conv, err := s.Load(path)
	return conv, path, err
}

// Load reads a conversation file from an arbitrary path. Absent fields are
// defaulted and messages other than user/assistant are discarded.
func (s *Store) Load(path string) (*StoredConversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, filepath.Base(path))
		}
		return nil, &ConversationError{Message: "load failed", Err: err}
	}

	conv, err := decode(data)
	if err != nil {
		return nil, &ConversationError{Message: "load failed", Err: err}
	}
	s.logger.Info("conversation loaded",
		zap.String("path", path),
		zap.Int("messages", len(conv.Messages)))
	return conv, nil
}

func decode(data []byte) (*StoredConversation, error) {
	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	if conv.Title == "" {
		conv.Title = DefaultTitle
	}
	if conv.Provider == "" {
		conv.Provider = DefaultProvider
	}
	if conv.Model == "" {
		conv.Model = DefaultModel
	}
	conv.Messages = persistable(conv.Messages)
	return &conv, nil
}

func persistable(msgs []StoredMessage) []StoredMessage {
	out := make([]StoredMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "user" || m.Role == "assistant" {
			out = append(out, m)
		}
	}
	return out
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations, most recently modified first.
func (s *Store) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := make([]ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(s.BaseDir, entry.Name())
		meta := ConversationMeta{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
		}

		data, err := os.ReadFile(path)
		var conv *StoredConversation
		if err == nil {
			conv, err = decode(data)
		}
		if err != nil {
			meta.Corrupt = true
			metas = append(metas, meta)
			continue
		}

		meta.SavedAt = conv.SavedAt()
		meta.Title = conv.Title
		meta.Preview = util.OneLine(conv.FirstUserMessage())
		meta.Messages = len(conv.Messages)
		metas = append(metas, meta)
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].ModTime.After(metas[j].ModTime)
	})
	return metas, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Purge removes the history directory and everything in it, then
// recreates it empty.
func (s *Store) Purge() error {
	if err := os.RemoveAll(s.BaseDir); err != nil {
		return &ConversationError{Message: "purge failed", Err: err}
	}
	if err := os.MkdirAll(s.BaseDir, 0755); err != nil {
		return &ConversationError{Message: "purge failed", Err: err}
	}
	s.logger.Info("history purged", zap.String("dir", s.BaseDir))
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	// Use errors.Is(err, ErrConversationNotFound) to check for this error.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrInvalidName is returned for save/load names containing path separators.
	ErrInvalidName = &ConversationError{Message: "invalid conversation name"}
)

// ConversationError represents a persistence failure. It implements the
// error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying I/O or decode error.
func (e *ConversationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
