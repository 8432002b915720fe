// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import "fmt"

// KeyType identifies a logical key produced by the decoder.
type KeyType int

const (
	// KeyRune is a printable character; Key.Rune holds it.
	KeyRune KeyType = iota
	KeySubmit
	KeyCancel
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	// KeyCommand switches the session into command entry (Ctrl+L).
	KeyCommand
)

var keyNames = map[KeyType]string{
	KeyRune:      "rune",
	KeySubmit:    "submit",
	KeyCancel:    "cancel",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyBackspace: "backspace",
	KeyCommand:   "command",
}

// Key is one decoded key event.
type Key struct {
	Type KeyType
	Rune rune
}

// RuneKey returns a KeyRune event for r.
func RuneKey(r rune) Key {
	return Key{Type: KeyRune, Rune: r}
}

// Is reports whether k is the control key t.
func (k Key) Is(t KeyType) bool {
	return k.Type == t
}

func (k Key) String() string {
	if k.Type == KeyRune {
		return fmt.Sprintf("rune(%q)", k.Rune)
	}
	if name, ok := keyNames[k.Type]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k.Type))
}
