// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !unix

package terminal

import (
	"context"
	"time"
)

const resizePollInterval = 250 * time.Millisecond

// WatchResize polls the terminal size, since there is no resize signal on
// this platform. The channel is closed when ctx is done.
func (s *Screen) WatchResize(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(resizePollInterval)
		defer ticker.Stop()

		rows, cols := s.Size()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r, c := s.Size()
				if r == rows && c == cols {
					continue
				}
				rows, cols = r, c
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
