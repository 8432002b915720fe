// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// DefaultEscDelay is how long the reader waits for the rest of a sequence
// before flushing the decoder. A lone ESC quits the chat screen, so this
// is long enough for an arrow key split across reads on a slow link.
const DefaultEscDelay = 100 * time.Millisecond

// Reader decodes keys from a byte stream (normally the raw-mode terminal)
// and publishes them on a channel. One decoder serves every consumer, so
// the main input line, command entry and modal pickers see identical
// decoding.
type Reader struct {
	src      io.Reader
	escDelay time.Duration

	keys chan Key

	mu  sync.Mutex
	err error
}

// NewReader creates a reader over src. A non-positive escDelay selects
// DefaultEscDelay.
func NewReader(src io.Reader, escDelay time.Duration) *Reader {
	if escDelay <= 0 {
		escDelay = DefaultEscDelay
	}
	return &Reader{
		src:      src,
		escDelay: escDelay,
		keys:     make(chan Key, 64),
	}
}

// Keys returns the channel of decoded keys. It is closed when the source
// reaches EOF or fails, or when the context passed to Run is done.
func (r *Reader) Keys() <-chan Key {
	return r.keys
}

// Err returns the error that ended the source, if any. io.EOF is not
// reported.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Run pumps bytes until ctx is done or the source ends. It is meant to be
// started in its own goroutine.
//
// The blocking Read happens on a helper goroutine; if ctx is cancelled
// while a Read is outstanding, that goroutine exits as soon as the Read
// returns.
func (r *Reader) Run(ctx context.Context) {
	defer close(r.keys)

	chunks := make(chan []byte)
	done := make(chan struct{})
	defer close(done)
	go r.pump(chunks, done)

	var dec Decoder
	timer := time.NewTimer(r.escDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case chunk, ok := <-chunks:
			if !ok {
				r.emit(ctx, dec.Flush())
				return
			}
			timer.Stop()
			for _, b := range chunk {
				if !r.emit(ctx, dec.Feed(b)) {
					return
				}
			}
			if dec.Pending() {
				timer.Reset(r.escDelay)
			}

		case <-timer.C:
			if !r.emit(ctx, dec.Flush()) {
				return
			}
		}
	}
}

func (r *Reader) pump(chunks chan<- []byte, done <-chan struct{}) {
	defer close(chunks)
	buf := make([]byte, 256)
	for {
		n, err := r.src.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
			}
			return
		}
	}
}

func (r *Reader) emit(ctx context.Context, keys []Key) bool {
	for _, k := range keys {
		select {
		case r.keys <- k:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
