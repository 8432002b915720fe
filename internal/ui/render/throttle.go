// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "time"

// DefaultThrottle is the minimum interval between two full redraws.
const DefaultThrottle = 100 * time.Millisecond

// Throttle drops full redraw requests that arrive sooner than the interval
// after the previous one. Forced requests always pass and reset the
// interval. Not safe for concurrent use; the render loop owns it.
type Throttle struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewThrottle creates a throttle. A non-positive interval disables it.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.now = now
	return t
}

// Allow reports whether a redraw may run now, and records it if so.
func (t *Throttle) Allow(force bool) bool {
	now := t.now()
	if !force && t.interval > 0 && !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
