// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// Log is the ordered conversation. It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	epoch    uint64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds msg to the end of the log and returns its ID.
func (l *Log) Append(msg Message) string {
	if msg.ID == "" {
		fresh := NewMessage(msg.Role, msg.Content)
		fresh.Error = msg.Error
		msg = fresh
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg.ID
}

// AppendIf appends msg only while the log is still at epoch.
func (l *Log) AppendIf(epoch uint64, msg Message) bool {
	if msg.ID == "" {
		fresh := NewMessage(msg.Role, msg.Content)
		fresh.Error = msg.Error
		msg = fresh
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		return false
	}
	l.messages = append(l.messages, msg)
	return true
}

// ReplaceContent overwrites the content of message id. It does nothing when
// the log moved past epoch or the message is gone.
func (l *Log) ReplaceContent(epoch uint64, id, content string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		return false
	}
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			l.messages[i].Content = content
			return true
		}
	}
	return false
}

// Remove deletes message id under the same conditions as ReplaceContent.
func (l *Log) Remove(epoch uint64, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		return false
	}
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			l.messages = append(l.messages[:i], l.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the log and starts a new epoch.
func (l *Log) Clear() {
	l.Reset(nil)
}

// Reset replaces the whole log and starts a new epoch.
func (l *Log) Reset(msgs []Message) {
	fresh := make([]Message, len(msgs))
	copy(fresh, msgs)
	l.mu.Lock()
	l.messages = fresh
	l.epoch++
	l.mu.Unlock()
}

// Epoch returns the current epoch.
func (l *Log) Epoch() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.epoch
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Snapshot returns a copy of all messages.
func (l *Log) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Get returns the message with the given id.
func (l *Log) Get(id string) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			return l.messages[i], true
		}
	}
	return Message{}, false
}

// Window returns the last n user and assistant messages in order.
// System notices are skipped.
func (l *Log) Window(n int) []Message {
	if n <= 0 {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	picked := make([]Message, 0, n)
	for i := len(l.messages) - 1; i >= 0 && len(picked) < n; i-- {
		if l.messages[i].Role.Persisted() {
			picked = append(picked, l.messages[i])
		}
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

// Persistable returns the user and assistant messages in order.
func (l *Log) Persistable() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, 0, len(l.messages))
	for _, m := range l.messages {
		if m.Role.Persisted() {
			out = append(out, m)
		}
	}
	return out
}
