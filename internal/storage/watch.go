// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce coalesces bursts of events (atomic saves produce a
// create and a rename) into a single notification.
const DefaultWatchDebounce = 150 * time.Millisecond

// =============================================================================
// HISTORY DIRECTORY WATCHER
// =============================================================================

// Watch reports changes to saved conversations in the history directory.
// A value is sent on the returned channel, at most once per debounce
// window, whenever a .json file is created, written, renamed or removed.
// Notifications are dropped rather than queued when the receiver is slow.
// The channel is closed after ctx is cancelled.
//
// The parent directory is watched as well so the watch survives the
// history directory being removed and recreated, as Purge does.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Clean(s.BaseDir)
	for _, path := range []string{filepath.Dir(dir), dir} {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	out := make(chan struct{}, 1)
	go s.processEvents(ctx, watcher, dir, debounce, out)
	return out, nil
}

func (s *Store) processEvents(ctx context.Context, watcher *fsnotify.Watcher, dir string, debounce time.Duration, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	// Stopped timer; armed on the first relevant event of a burst.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if recreated(event, dir) {
				// The old watch went away with the removed directory.
				if err := watcher.Add(dir); err != nil {
					s.logger.Warn("history watch lost", zap.String("dir", dir), zap.Error(err))
					continue
				}
			} else if !relevant(event, dir) {
				continue
			}
			if !armed {
				timer.Reset(debounce)
				armed = true
			}

		case <-timer.C:
			armed = false
			select {
			case out <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug("history watch error", zap.Error(err))
		}
	}
}

// recreated reports whether event is the history directory itself being
// created in its parent.
func recreated(event fsnotify.Event, dir string) bool {
	return event.Has(fsnotify.Create) && filepath.Clean(event.Name) == dir
}

// relevant reports whether event touches a conversation file directly
// inside dir. Events for siblings seen through the parent watch are not.
func relevant(event fsnotify.Event, dir string) bool {
	if filepath.Dir(filepath.Clean(event.Name)) != dir {
		return false
	}
	if !strings.HasSuffix(filepath.Base(event.Name), fileExt) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
