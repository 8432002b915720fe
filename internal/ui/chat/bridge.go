// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/model"
)

// ErrExchangeInFlight is returned by Bridge.Start while a reply is still
// streaming.
var ErrExchangeInFlight = errors.New("a reply is still in progress")

// updateBuffer is the capacity of the update channel. Delta updates are
// dropped when it is full; the next one carries the same state.
const updateBuffer = 16

// =============================================================================
// EXCHANGER
// =============================================================================

// Exchanger starts one request/response exchange. *cloud.Client implements
// it for both dialects.
type Exchanger interface {
	BeginExchange(ctx context.Context, p *cloud.Profile, messages []cloud.ChatMessage) (<-chan cloud.Delta, error)
}

// =============================================================================
// UPDATES
// =============================================================================

// UpdateKind tells the foreground loop what kind of redraw an update needs.
type UpdateKind int

const (
	// UpdateDelta means the placeholder content changed.
	UpdateDelta UpdateKind = iota
	// UpdateDone means the exchange finished, possibly with an empty reply.
	UpdateDone
	// UpdateFailed means the exchange failed and a notice was appended.
	UpdateFailed
)

// Update is published by the bridge after it changed the log.
type Update struct {
	Kind UpdateKind
	Err  error
}

// =============================================================================
// BRIDGE
// =============================================================================

// Exchange describes one send: the messages for the provider and the
// placeholder in the log that the reply overwrites.
type Exchange struct {
	Profile       *cloud.Profile
	Messages      []model.Message
	PlaceholderID string
	Epoch         uint64
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	// MaxResponseLength caps the reply in runes.
	MaxResponseLength int
	// StreamFPS caps delta updates per second. Zero disables pacing.
	StreamFPS int
	Logger    *zap.Logger
}

// Bridge runs exchanges in the background and writes replies into the log.
// All log writes are guarded by the epoch and placeholder ID of the
// exchange, so clearing or loading a conversation discards late writes.
// At most one exchange runs at a time.
type Bridge struct {
	exchanger Exchanger
	log       *model.Log
	opts      BridgeOptions
	logger    *zap.Logger

	updates chan Update

	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridge creates a bridge that writes into log.
func NewBridge(exchanger Exchanger, log *model.Log, opts BridgeOptions) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		exchanger: exchanger,
		log:       log,
		opts:      opts,
		logger:    logger,
		updates:   make(chan Update, updateBuffer),
	}
}

// Updates returns the channel the foreground loop drains before redrawing.
func (b *Bridge) Updates() <-chan Update {
	return b.updates
}

// Busy reports whether an exchange is running.
func (b *Bridge) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// Wait blocks until the running exchange, if any, has returned.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// Cancel stops the running exchange, if any. A cancelled exchange writes
// nothing more to the log and publishes no final update.
func (b *Bridge) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
}

// Start begins ex in a new goroutine. It fails with ErrExchangeInFlight when
// another exchange is running. The goroutine ends when the reply ends, when
// ctx is done or when Cancel is called.
func (b *Bridge) Start(ctx context.Context, ex Exchange) error {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return ErrExchangeInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	b.busy = true
	b.cancel = cancel
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		kind, err := b.run(ctx, ex)

		b.mu.Lock()
		b.busy = false
		b.cancel = nil
		b.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		b.publish(ctx, Update{Kind: kind, Err: err}, true)
	}()
	return nil
}

func (b *Bridge) run(ctx context.Context, ex Exchange) (UpdateKind, error) {
	log := b.logger.With(zap.String("provider", ex.Profile.Name), zap.String("model", ex.Profile.Model))
	start := time.Now()

	var pace *rate.Limiter
	if b.opts.StreamFPS > 0 {
		pace = rate.NewLimiter(rate.Limit(b.opts.StreamFPS), 1)
	}
	acc := NewAccumulator(b.opts.MaxResponseLength)

	deltas, err := b.exchanger.BeginExchange(ctx, ex.Profile, toWire(ex.Messages))
	if err != nil {
		return b.fail(ctx, ex, acc, err)
	}

	for d := range deltas {
		if d.Err != nil {
			return b.fail(ctx, ex, acc, d.Err)
		}
		if !acc.Add(d.Content) {
			continue
		}
		if !b.log.ReplaceContent(ex.Epoch, ex.PlaceholderID, acc.String()) {
			// The conversation was cleared or replaced; keep draining so
			// the client goroutine can finish.
			continue
		}
		if pace == nil || pace.Allow() {
			b.publish(ctx, Update{Kind: UpdateDelta}, false)
		}
	}
	if ctx.Err() != nil {
		return UpdateDone, ctx.Err()
	}

	if acc.Empty() {
		b.log.Remove(ex.Epoch, ex.PlaceholderID)
		b.log.AppendIf(ex.Epoch, model.NewNotice(NoticeNoResponse, false))
		log.Info("empty reply", zap.Duration("elapsed", time.Since(start)))
		return UpdateDone, nil
	}
	b.log.ReplaceContent(ex.Epoch, ex.PlaceholderID, acc.String())
	log.Debug("reply complete",
		zap.Int("deltas", acc.Deltas()),
		zap.Bool("truncated", acc.Truncated()),
		zap.Duration("elapsed", time.Since(start)))
	return UpdateDone, nil
}

// fail records err in the log. An untouched placeholder is removed; a
// partial reply is kept.
func (b *Bridge) fail(ctx context.Context, ex Exchange, acc *Accumulator, err error) (UpdateKind, error) {
	if ctx.Err() != nil {
		return UpdateFailed, err
	}
	b.logger.Warn("exchange failed", zap.String("provider", ex.Profile.Name), zap.Error(err))
	if acc.Empty() {
		b.log.Remove(ex.Epoch, ex.PlaceholderID)
	} else {
		b.log.ReplaceContent(ex.Epoch, ex.PlaceholderID, acc.String())
	}
	b.log.AppendIf(ex.Epoch, model.NewNotice(describeError(err), true))
	return UpdateFailed, err
}

// publish sends u to the foreground loop. Delta updates never block.
func (b *Bridge) publish(ctx context.Context, u Update, wait bool) {
	if !wait {
		select {
		case b.updates <- u:
		default:
		}
		return
	}
	select {
	case b.updates <- u:
	case <-ctx.Done():
	}
}

func toWire(msgs []model.Message) []cloud.ChatMessage {
	out := make([]cloud.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = cloud.ChatMessage{Role: m.Role.String(), Content: m.Content}
	}
	return out
}
