// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")

	require.NoError(t, AtomicWriteFile(path, []byte(`{"title":"x"}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, string(data))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "nested", "chat.json")

	require.NoError(t, AtomicWriteFile(path, []byte("data"), 0644))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.json")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".termchat", "history"), ExpandHome("~/.termchat/history"))
	assert.Equal(t, "/tmp/x", ExpandHome("/tmp/x"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestClampRunes(t *testing.T) {
	const marker = "\n...(truncated)"

	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantCut bool
	}{
		{"short", "hello", 10, "hello", false},
		{"exact", "hello", 5, "hello", false},
		{"long", "hello world", 5, "hello" + marker, true},
		{"multibyte not cut", "héllo", 5, "héllo", false},
		{"multibyte cut", "日本語テキスト", 3, "日本語" + marker, true},
		{"zero", "abc", 0, marker, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := ClampRunes(tt.input, tt.max, marker)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCut, cut)
		})
	}
}

func TestClampRunes_LengthLaw(t *testing.T) {
	const marker = " [cut]"
	input := strings.Repeat("ab€", 4000)

	got, cut := ClampRunes(input, 5000, marker)

	require.True(t, cut)
	assert.Equal(t, 5000+RuneLen(marker), RuneLen(got))
	assert.True(t, strings.HasSuffix(got, marker))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 5))
	assert.Equal(t, "hello...", TruncateRunes("hello world", 5))
	assert.Equal(t, "日本...", TruncateRunes("日本語", 2))
	assert.Equal(t, "", TruncateRunes("abc", 0))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c d", OneLine("a\nb\r\nc\rd"))
}

func TestWidthHelpers(t *testing.T) {
	assert.Equal(t, 5, Width("hello"))
	assert.Equal(t, 4, Width("日本"))

	assert.Equal(t, "hel", FitWidth("hello", 3))
	assert.Equal(t, "日", FitWidth("日本", 3))
	assert.Equal(t, "hello", FitWidth("hello", 10))

	assert.Equal(t, "llo", TailWidth("hello", 3))
	assert.Equal(t, "本", TailWidth("日本", 3))
	assert.Equal(t, "", TailWidth("hello", 0))
}
