// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/util"
)

// =============================================================================
// ACCUMULATOR TESTS
// =============================================================================

func TestAccumulator_TruncatesToExactLength(t *testing.T) {
	for _, limit := range []int{1, 10, 37} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			acc := NewAccumulator(limit)
			for i := 0; i < limit; i++ {
				acc.Add("é")
			}
			require.False(t, acc.Truncated())

			acc.Add("xyz")
			acc.Add("ignored")

			out := acc.String()
			assert.True(t, acc.Truncated())
			assert.True(t, strings.HasSuffix(out, ResponseTruncatedMarker))
			assert.Equal(t, limit+util.RuneLen(ResponseTruncatedMarker), util.RuneLen(out))
		})
	}
}

func TestAccumulator_EmptyDeltas(t *testing.T) {
	acc := NewAccumulator(0)
	assert.False(t, acc.Add(""))
	assert.True(t, acc.Empty())
	assert.True(t, acc.Add("a"))
	assert.False(t, acc.Empty())
	assert.Equal(t, 1, acc.Deltas())
}

// =============================================================================
// BRIDGE TESTS
// =============================================================================

func startExchange(t *testing.T, b *Bridge, log *model.Log) model.Message {
	t.Helper()
	log.Append(model.NewMessage(model.RoleUser, "question"))
	placeholder := model.NewMessage(model.RoleAssistant, ThinkingPlaceholder)
	log.Append(placeholder)
	require.NoError(t, b.Start(context.Background(), Exchange{
		Profile:       testProfiles[0],
		Messages:      log.Window(10),
		PlaceholderID: placeholder.ID,
		Epoch:         log.Epoch(),
	}))
	return placeholder
}

func drain(b *Bridge) []Update {
	var out []Update
	for {
		select {
		case u := <-b.Updates():
			out = append(out, u)
		default:
			return out
		}
	}
}

func TestBridge_OverwritesPlaceholder(t *testing.T) {
	log := model.NewLog()
	b := NewBridge(&fakeExchanger{deltas: deltas("a", "", "b", "c")}, log, BridgeOptions{})

	p := startExchange(t, b, log)
	b.Wait()

	got, ok := log.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "abc", got.Content)

	updates := drain(b)
	require.NotEmpty(t, updates)
	assert.Equal(t, UpdateDone, updates[len(updates)-1].Kind)
	for _, u := range updates[:len(updates)-1] {
		assert.Equal(t, UpdateDelta, u.Kind)
	}
}

func TestBridge_TruncatesReply(t *testing.T) {
	log := model.NewLog()
	b := NewBridge(&fakeExchanger{deltas: deltas("0123456789", "abcdef")}, log, BridgeOptions{MaxResponseLength: 12})

	p := startExchange(t, b, log)
	b.Wait()

	got, _ := log.Get(p.ID)
	assert.Equal(t, "0123456789ab"+ResponseTruncatedMarker, got.Content)
}

func TestBridge_PartialReplyKeptOnError(t *testing.T) {
	log := model.NewLog()
	streamErr := fmt.Errorf("%w: connection reset", cloud.ErrTransport)
	ex := &fakeExchanger{deltas: []cloud.Delta{{Content: "partial"}, {Err: streamErr}}}
	b := NewBridge(ex, log, BridgeOptions{})

	p := startExchange(t, b, log)
	b.Wait()

	got, ok := log.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, "partial", got.Content)

	msgs := log.Snapshot()
	last := msgs[len(msgs)-1]
	assert.True(t, last.Error)
	assert.Equal(t, "Network error: transport error: connection reset", last.Content)

	updates := drain(b)
	require.NotEmpty(t, updates)
	final := updates[len(updates)-1]
	assert.Equal(t, UpdateFailed, final.Kind)
	assert.True(t, errors.Is(final.Err, cloud.ErrTransport))
}

func TestBridge_SingleExchangeAtATime(t *testing.T) {
	log := model.NewLog()
	ex := &fakeExchanger{deltas: deltas("x"), gate: make(chan struct{})}
	b := NewBridge(ex, log, BridgeOptions{})

	startExchange(t, b, log)
	err := b.Start(context.Background(), Exchange{Profile: testProfiles[0]})
	assert.ErrorIs(t, err, ErrExchangeInFlight)

	close(ex.gate)
	b.Wait()
	assert.False(t, b.Busy())
}

func TestBridge_CancelWritesNothing(t *testing.T) {
	log := model.NewLog()
	ex := &fakeExchanger{deltas: deltas("x"), gate: make(chan struct{})}
	b := NewBridge(ex, log, BridgeOptions{})

	p := startExchange(t, b, log)
	b.Cancel()
	b.Wait()

	got, _ := log.Get(p.ID)
	assert.Equal(t, ThinkingPlaceholder, got.Content)
	assert.Equal(t, 2, log.Len())
	assert.Empty(t, drain(b))
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&cloud.StatusError{StatusCode: 500}, "API error: HTTP 500"},
		{fmt.Errorf("decode: %w", cloud.ErrIncompatibleResponse), "API response format incompatible"},
		{errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}
}
