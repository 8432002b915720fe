// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Label returns the prefix rendered in front of a message of this role.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "You: "
	case RoleAssistant:
		return "AI: "
	case RoleSystem:
		return "System: "
	default:
		return string(r) + ": "
	}
}

// Persisted reports whether messages of this role are written to history
// files and sent to providers.
func (r Role) Persisted() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole returns the role for a stored role name. Unknown names report false.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), true
	}
	return "", false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation entry.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time

	// Error marks system notices produced by a failure. Display only.
	Error bool
}

// NewMessage creates a message with a fresh ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewNotice creates a system notice.
func NewNotice(content string, isError bool) Message {
	m := NewMessage(RoleSystem, content)
	m.Error = isError
	return m
}
