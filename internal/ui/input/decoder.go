// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"unicode/utf8"
)

// Control bytes the decoder maps to keys.
const (
	byteCtrlC     = 0x03
	byteBackspace = 0x08
	byteTab       = 0x09
	byteLF        = 0x0A
	byteCtrlL     = 0x0C
	byteCR        = 0x0D
	byteEsc       = 0x1B
	byteDel       = 0x7F

	// maxSequenceLen bounds how many bytes an escape sequence may span
	// before the decoder gives up on it.
	maxSequenceLen = 32
)

type decodeState int

const (
	stateIdle decodeState = iota
	stateUTF8
	stateEscape
	stateCSI
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns raw terminal bytes into Keys. It is a pure state machine:
// Feed consumes one byte at a time and returns whatever keys became
// complete. When Pending reports true and no further byte arrives within
// the escape delay, the caller must call Flush.
//
// Decoding never fails. An invalid or incomplete UTF-8 sequence yields its
// lead byte as a single code point.
type Decoder struct {
	state decodeState

	// UTF-8 sequence in progress.
	lead byte
	need int
	seq  [utf8.UTFMax]byte
	n    int

	// Escape sequence in progress.
	ss3    bool
	params int
}

// Pending reports whether the decoder is holding an incomplete sequence.
func (d *Decoder) Pending() bool {
	return d.state != stateIdle
}

// Feed consumes one byte.
func (d *Decoder) Feed(b byte) []Key {
	switch d.state {
	case stateUTF8:
		return d.feedUTF8(b)
	case stateEscape:
		return d.feedEscape(b)
	case stateCSI:
		return d.feedCSI(b)
	default:
		return d.feedIdle(b)
	}
}

// Flush resolves an incomplete sequence after the input went quiet. A lone
// ESC becomes KeyCancel; a partial UTF-8 sequence becomes its lead byte.
func (d *Decoder) Flush() []Key {
	state := d.state
	d.reset()
	switch state {
	case stateUTF8:
		return fallback(d.lead)
	case stateEscape:
		return []Key{{Type: KeyCancel}}
	default:
		return nil
	}
}

func (d *Decoder) reset() {
	d.state = stateIdle
	d.need = 0
	d.n = 0
	d.ss3 = false
	d.params = 0
}

func (d *Decoder) feedIdle(b byte) []Key {
	switch {
	case b == byteCR || b == byteLF:
		return []Key{{Type: KeySubmit}}
	case b == byteDel || b == byteBackspace:
		return []Key{{Type: KeyBackspace}}
	case b == byteCtrlL:
		return []Key{{Type: KeyCommand}}
	case b == byteCtrlC:
		return []Key{{Type: KeyCancel}}
	case b == byteTab:
		return []Key{RuneKey(' ')}
	case b == byteEsc:
		d.state = stateEscape
		return nil
	case b < 0x20:
		return nil
	case b < utf8.RuneSelf:
		return []Key{RuneKey(rune(b))}
	}

	// UNICODE: lead byte declares how many continuation bytes follow.
	need := 0
	switch {
	case b&0xE0 == 0xC0:
		need = 1
	case b&0xF0 == 0xE0:
		need = 2
	case b&0xF8 == 0xF0:
		need = 3
	default:
		// Stray continuation byte or invalid lead.
		return fallback(b)
	}
	d.state = stateUTF8
	d.lead = b
	d.need = need
	d.seq[0] = b
	d.n = 1
	return nil
}

func (d *Decoder) feedUTF8(b byte) []Key {
	if b&0xC0 != 0x80 {
		// Invalid continuation: emit the lead byte, then treat b afresh.
		lead := d.lead
		d.reset()
		return append(fallback(lead), d.Feed(b)...)
	}
	d.seq[d.n] = b
	d.n++
	if d.n <= d.need {
		return nil
	}

	seq := d.seq[:d.n]
	lead := d.lead
	d.reset()
	r, size := utf8.DecodeRune(seq)
	if r == utf8.RuneError && size != len(seq) {
		// Overlong form, surrogate half or value above U+10FFFF: the lead
		// byte stands alone and the continuation bytes are dropped.
		return fallback(lead)
	}
	return []Key{RuneKey(r)}
}

func (d *Decoder) feedEscape(b byte) []Key {
	switch b {
	case '[':
		d.state = stateCSI
		return nil
	case 'O':
		d.state = stateCSI
		d.ss3 = true
		return nil
	case byteEsc:
		// ESC ESC: the first one stands alone.
		return []Key{{Type: KeyCancel}}
	}
	// Alt+key chords are not bound.
	d.reset()
	return nil
}

func (d *Decoder) feedCSI(b byte) []Key {
	switch {
	case b >= 0x40 && b <= 0x7E:
		// Final byte.
		d.reset()
		switch b {
		case 'A':
			return []Key{{Type: KeyUp}}
		case 'B':
			return []Key{{Type: KeyDown}}
		case 'C':
			return []Key{{Type: KeyRight}}
		case 'D':
			return []Key{{Type: KeyLeft}}
		}
		return nil
	case b >= 0x20 && b <= 0x3F && !d.ss3:
		// Parameter or intermediate byte.
		d.params++
		if d.params > maxSequenceLen {
			d.reset()
		}
		return nil
	default:
		// Malformed sequence: abandon it and decode b normally.
		d.reset()
		return d.Feed(b)
	}
}

// fallback interprets a lone byte as the code point with the same value.
// C1 control codes are dropped.
func fallback(b byte) []Key {
	if b >= 0x80 && b < 0xA0 {
		return nil
	}
	return []Key{RuneKey(rune(b))}
}
