// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/termchat/internal/util"
)

// ResponseTruncatedMarker is appended to a reply cut at the length limit.
const ResponseTruncatedMarker = "\n...(response too long, truncated)"

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator collects the deltas of one reply. Once the reply passes the
// limit it is cut to exactly maxRunes runes plus ResponseTruncatedMarker
// and further deltas are ignored.
type Accumulator struct {
	buf       strings.Builder
	runes     int
	maxRunes  int
	clamped   string
	truncated bool
	deltas    int
}

// NewAccumulator creates an accumulator. maxRunes <= 0 disables the limit.
func NewAccumulator(maxRunes int) *Accumulator {
	return &Accumulator{maxRunes: maxRunes}
}

// Add appends one delta. It reports whether the visible text changed.
func (a *Accumulator) Add(delta string) bool {
	if a.truncated || delta == "" {
		return false
	}
	a.deltas++
	a.buf.WriteString(delta)
	a.runes += utf8.RuneCountInString(delta)
	if a.maxRunes > 0 && a.runes > a.maxRunes {
		a.clamped, a.truncated = util.ClampRunes(a.buf.String(), a.maxRunes, ResponseTruncatedMarker)
		a.buf.Reset()
	}
	return true
}

// String returns the reply so far.
func (a *Accumulator) String() string {
	if a.truncated {
		return a.clamped
	}
	return a.buf.String()
}

// Empty reports whether no content arrived.
func (a *Accumulator) Empty() bool {
	return !a.truncated && a.buf.Len() == 0
}

// Truncated reports whether the limit was hit.
func (a *Accumulator) Truncated() bool { return a.truncated }

// Deltas returns how many non-empty deltas were added.
func (a *Accumulator) Deltas() int { return a.deltas }
