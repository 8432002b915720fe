// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal owns the real terminal: raw mode, the alternate screen
// and buffered ANSI output. Screen implements render.Surface.
package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/termchat/internal/ui/styles"
)

const (
	// DefaultRows and DefaultCols are used when the size cannot be read.
	DefaultRows = 24
	DefaultCols = 80
)

// ErrNotTerminal is returned by Open when stdin or stdout is not a TTY.
var ErrNotTerminal = errors.New("not a terminal")

// Screen is a raw-mode terminal. Drawing calls are buffered and written
// in one piece on Flush.
type Screen struct {
	in  *os.File
	out io.Writer
	fd  int

	oldState *term.State
	theme    *styles.Theme

	mu     sync.Mutex
	buf    bytes.Buffer
	output *termenv.Output

	closeOnce sync.Once
}

// Open puts the terminal into raw mode and switches to the alternate
// screen. The caller must Close the screen to restore the terminal.
func Open(in, out *os.File) (*Screen, error) {
	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		return nil, ErrNotTerminal
	}

	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}

	s := newScreen(in, out, termenv.NewOutput(out).Profile, styles.NewTheme(out))
	s.fd = int(out.Fd())
	s.oldState = oldState

	s.output.AltScreen()
	s.output.ClearScreen()
	if err := s.Flush(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newScreen(in *os.File, out io.Writer, profile termenv.Profile, theme *styles.Theme) *Screen {
	s := &Screen{in: in, out: out, fd: -1, theme: theme}
	s.output = termenv.NewOutput(&s.buf, termenv.WithProfile(profile))
	return s
}

// Input returns the keyboard input stream.
func (s *Screen) Input() io.Reader {
	return s.in
}

// Size returns the terminal size, or 24x80 when it cannot be read.
func (s *Screen) Size() (int, int) {
	if s.fd < 0 {
		return DefaultRows, DefaultCols
	}
	cols, rows, err := term.GetSize(s.fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return DefaultRows, DefaultCols
	}
	return rows, cols
}

func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.ClearScreen()
}

func (s *Screen) ClearLine(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.MoveCursor(row+1, 1)
	s.output.ClearLine()
}

func (s *Screen) DrawText(row, col int, text string, tone styles.Tone) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.MoveCursor(row+1, col+1)
	s.buf.WriteString(s.theme.Render(tone, text))
}

func (s *Screen) MoveCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.MoveCursor(row+1, col+1)
}

// Flush writes everything drawn since the last Flush.
func (s *Screen) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf.Len() == 0 {
		return nil
	}
	_, err := s.out.Write(s.buf.Bytes())
	s.buf.Reset()
	return err
}

// Close leaves the alternate screen and restores the terminal mode. It is
// safe to call more than once.
func (s *Screen) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.output.ShowCursor()
		s.output.ExitAltScreen()
		s.mu.Unlock()
		err = s.Flush()
		if s.oldState != nil {
			if rerr := term.Restore(int(s.in.Fd()), s.oldState); rerr != nil && err == nil {
				err = rerr
			}
		}
	})
	return err
}
