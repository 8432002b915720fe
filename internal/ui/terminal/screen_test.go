// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/jeranaias/termchat/internal/ui/styles"
)

func newBufferScreen(t *testing.T) (*Screen, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	theme := styles.NewThemeWithProfile(&out, termenv.Ascii, true)
	return newScreen(os.Stdin, &out, termenv.Ascii, theme), &out
}

func TestScreen_BuffersUntilFlush(t *testing.T) {
	s, out := newBufferScreen(t)

	s.DrawText(2, 4, "hello", styles.ToneUser)
	if out.Len() != 0 {
		t.Fatalf("output written before Flush: %q", out.String())
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "\x1b[3;5H") {
		t.Errorf("missing 1-based cursor move in %q", got)
	}
	if !strings.HasSuffix(got, "hello") {
		t.Errorf("output = %q, want text after the cursor move", got)
	}
}

func TestScreen_ClearLine(t *testing.T) {
	s, out := newBufferScreen(t)
	s.ClearLine(0)
	s.Flush()

	if got := out.String(); got != "\x1b[1;1H\x1b[2K" {
		t.Errorf("ClearLine output = %q", got)
	}
}

func TestScreen_SizeFallback(t *testing.T) {
	s, _ := newBufferScreen(t)
	rows, cols := s.Size()
	if rows != DefaultRows || cols != DefaultCols {
		t.Errorf("Size() = %dx%d, want %dx%d", rows, cols, DefaultRows, DefaultCols)
	}
}

func TestOpen_RejectsNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notatty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := Open(f, f); err != ErrNotTerminal {
		t.Errorf("Open(file) err = %v, want ErrNotTerminal", err)
	}
}
