// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Label(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You: "},
		{RoleAssistant, "AI: "},
		{RoleSystem, "System: "},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Label())
		})
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("assistant")
	assert.True(t, ok)
	assert.Equal(t, RoleAssistant, r)

	_, ok = ParseRole("tool")
	assert.False(t, ok)
}

func TestLog_AppendAndSnapshot(t *testing.T) {
	log := NewLog()
	id := log.Append(NewMessage(RoleUser, "hello"))
	log.Append(Message{Role: RoleAssistant, Content: "hi"})

	snap := log.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, id, snap[0].ID)
	assert.NotEmpty(t, snap[1].ID, "Append should assign an ID")

	// Snapshots are copies.
	snap[0].Content = "changed"
	got, ok := log.Get(id)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)
}

func TestLog_EpochGuardsLateWrites(t *testing.T) {
	log := NewLog()
	epoch := log.Epoch()
	id := log.Append(NewMessage(RoleAssistant, "Thinking..."))

	assert.True(t, log.ReplaceContent(epoch, id, "partial"))

	log.Clear()
	assert.False(t, log.ReplaceContent(epoch, id, "late"))
	assert.False(t, log.AppendIf(epoch, NewNotice("late notice", true)))
	assert.False(t, log.Remove(epoch, id))
	assert.Equal(t, 0, log.Len())
}

func TestLog_Remove(t *testing.T) {
	log := NewLog()
	log.Append(NewMessage(RoleUser, "q"))
	id := log.Append(NewMessage(RoleAssistant, "Thinking..."))

	require.True(t, log.Remove(log.Epoch(), id))
	assert.Equal(t, 1, log.Len())
	_, ok := log.Get(id)
	assert.False(t, ok)
}

func TestLog_WindowSkipsSystem(t *testing.T) {
	log := NewLog()
	log.Append(NewNotice("tip", false))
	for i := 0; i < 12; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		log.Append(NewMessage(role, fmt.Sprintf("m%d", i)))
		log.Append(NewNotice("note", false))
	}

	win := log.Window(10)
	require.Len(t, win, 10)
	assert.Equal(t, "m2", win[0].Content)
	assert.Equal(t, "m11", win[9].Content)
	for _, m := range win {
		assert.NotEqual(t, RoleSystem, m.Role)
	}

	assert.Empty(t, log.Window(0))
}

func TestLog_ResetStartsNewEpoch(t *testing.T) {
	log := NewLog()
	before := log.Epoch()
	log.Reset([]Message{NewMessage(RoleUser, "a"), NewMessage(RoleAssistant, "b")})

	assert.NotEqual(t, before, log.Epoch())
	assert.Len(t, log.Persistable(), 2)
}

func TestLog_ConcurrentWriters(t *testing.T) {
	log := NewLog()
	epoch := log.Epoch()
	id := log.Append(NewMessage(RoleAssistant, ""))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				log.ReplaceContent(epoch, id, fmt.Sprintf("%d-%d", n, j))
				_ = log.Snapshot()
			}
		}(i)
	}
	for i := 0; i < 50; i++ {
		log.Append(NewNotice("tick", false))
	}
	wg.Wait()

	assert.Equal(t, 51, log.Len())
}
