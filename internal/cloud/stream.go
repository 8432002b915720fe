// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// STREAMING: chunk parsing shared by the SSE and line-delimited readers.

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk is one decoded streaming object.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`

	// Some custom endpoints signal the end outside of choices.
	Done         bool   `json:"done"`
	FinishReason string `json:"finish_reason"`
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the chunk ends the stream.
func (c *StreamChunk) IsDone() bool {
	if c.Done || c.FinishReason != "" {
		return true
	}
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

var doneMarker = []byte("[DONE]")

// decodeChunk parses one payload. ok is false for payloads that are not
// valid chunk JSON; callers skip those.
func decodeChunk(data []byte) (chunk StreamChunk, ok bool) {
	if err := json.Unmarshal(data, &chunk); err != nil {
		return StreamChunk{}, false
	}
	return chunk, true
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event and returns its type and joined data
// lines. It returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && !(err == io.EOF && len(line) > 0) {
			if err == io.EOF && len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line ends the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// id:, retry: and ":" comments are ignored.
	}
}

// readEvents consumes an SSE body (ProtocolOpenAI, DialectStream).
func readEvents(ctx context.Context, body io.Reader, send func(Delta) bool, log *zap.Logger) (int, error) {
	sse := NewSSEReader(body)
	sent := 0
	for {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		_, data, err := sse.ReadEvent()
		if err == io.EOF {
			return sent, nil
		}
		if err != nil {
			return sent, fmt.Errorf("%w: stream read: %w", ErrTransport, err)
		}

		if bytes.Equal(data, doneMarker) {
			return sent, nil
		}
		chunk, ok := decodeChunk(data)
		if !ok {
			log.Debug("skipping malformed chunk", zap.Int("bytes", len(data)))
			continue
		}
		if text := chunk.GetContent(); text != "" {
			if !send(Delta{Content: text}) {
				return sent, ctx.Err()
			}
			sent++
		}
		if chunk.IsDone() {
			return sent, nil
		}
	}
}

// readLines consumes a newline-delimited JSON body (ProtocolHTTP,
// DialectStream). Lines may carry a "data:" prefix.
func readLines(ctx context.Context, body io.Reader, send func(Delta) bool, log *zap.Logger) (int, error) {
	reader := bufio.NewReader(body)
	sent := 0
	for {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		line, err := reader.ReadBytes('\n')
		if err != nil && !(err == io.EOF && len(line) > 0) {
			if err == io.EOF {
				return sent, nil
			}
			return sent, fmt.Errorf("%w: stream read: %w", ErrTransport, err)
		}
		last := err == io.EOF

		line = bytes.TrimSpace(line)
		line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		switch {
		case len(line) == 0:
			// keep-alive
		case bytes.Equal(line, doneMarker):
			return sent, nil
		default:
			chunk, ok := decodeChunk(line)
			if !ok {
				log.Debug("skipping non-JSON line", zap.Int("bytes", len(line)))
				break
			}
			if text := chunk.GetContent(); text != "" {
				if !send(Delta{Content: text}) {
					return sent, ctx.Err()
				}
				sent++
			}
			if chunk.IsDone() {
				return sent, nil
			}
		}
		if last {
			return sent, nil
		}
	}
}
