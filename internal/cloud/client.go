// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxResponseSize caps single-JSON bodies and error bodies.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// maxErrorBody is how much of a non-200 body is kept for the notice.
	maxErrorBody = 4 * 1024

	// deltaBuffer is the capacity of the delta channel.
	deltaBuffer = 64
)

// UserAgent is sent with every request.
var UserAgent = "termchat/dev"

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Exchanges have no overall timeout; cancellation goes through the context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTransport wraps failures to reach the provider or read its reply.
	ErrTransport = errors.New("transport error")

	// ErrIncompatibleResponse indicates a single-JSON body without a message.
	ErrIncompatibleResponse = errors.New("API response format incompatible")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has insufficient credits.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// StatusError is returned for any non-200 reply.
type StatusError struct {
	StatusCode int
	Code       string // provider error code, when the body carries one
	Message    string // provider error message, when the body carries one
	Body       string // raw body text, clipped
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}

// Unwrap maps well-known status codes onto the sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// apiErrorResponse is the OpenAI-style error body.
type apiErrorResponse struct {
	Error struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newStatusError builds a StatusError from a reply body.
func newStatusError(statusCode int, body []byte) *StatusError {
	se := &StatusError{StatusCode: statusCode}
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	se.Body = text

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		se.Message = apiErr.Error.Message
		if apiErr.Error.Code != nil {
			se.Code = fmt.Sprint(apiErr.Error.Code)
		}
	}
	return se
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage is one message of the request body.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for both dialects.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

// ChatResponse is the single-JSON dialect reply.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Delta is one fragment of a reply. A Delta with Err set is the last value
// sent before the channel closes.
type Delta struct {
	Content string
	Err     error
}

// =============================================================================
// CLIENT
// =============================================================================

// Client performs exchanges against any Profile.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client that uses the shared pooled transport.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: sharedStreamingClient,
		logger:     logger,
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// BeginExchange posts messages to the provider described by p and returns the
// reply as a channel of deltas. Errors that happen before any reply byte is
// read (transport failure, non-200 status) are returned directly. The channel
// is closed when the reply ends, after an error delta, or when ctx is done.
func (c *Client) BeginExchange(ctx context.Context, p *Profile, messages []ChatMessage) (<-chan Delta, error) {
	reqBody := ChatRequest{
		Model:    p.Model,
		Messages: messages,
		Stream:   p.Dialect == DialectStream,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.RequestURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	setHeaders(req, p)

	log := c.logger.With(
		zap.String("provider", p.Name),
		zap.String("model", p.Model),
		zap.Stringer("dialect", p.Dialect),
	)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	// SECURITY: drop the credential from the request before anything can log it.
	req.Header.Del("Authorization")
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		log.Warn("provider returned error status", zap.Int("status", resp.StatusCode))
		return nil, newStatusError(resp.StatusCode, body)
	}
	log.Debug("exchange started", zap.Duration("ttfb", time.Since(start)))

	deltas := make(chan Delta, deltaBuffer)
	go func() {
		defer close(deltas)
		defer resp.Body.Close()

		send := func(d Delta) bool {
			select {
			case deltas <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var n int
		var err error
		switch {
		case p.Dialect == DialectJSON:
			n, err = readSingle(resp.Body, send)
		case p.Protocol == ProtocolOpenAI:
			n, err = readEvents(ctx, resp.Body, send, log)
		default:
			n, err = readLines(ctx, resp.Body, send, log)
		}
		if err != nil {
			log.Warn("exchange failed", zap.Int("deltas", n), zap.Error(err))
			send(Delta{Err: err})
			return
		}
		log.Info("exchange finished", zap.Int("deltas", n), zap.Duration("elapsed", time.Since(start)))
	}()

	return deltas, nil
}

// setHeaders applies the standard headers, then the profile's extra headers.
func setHeaders(req *http.Request, p *Profile) {
	if p.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+p.Credential)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if p.Dialect == DialectStream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
}

// readSingle decodes a whole-message reply and sends it as one delta.
// A reply without choices sends nothing.
func readSingle(body io.Reader, send func(Delta) bool) (int, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIncompatibleResponse, err)
	}
	if len(resp.Choices) == 0 {
		return 0, nil
	}
	content := resp.Choices[0].Message.Content
	if content == nil {
		return 0, ErrIncompatibleResponse
	}
	if *content == "" {
		return 0, nil
	}
	send(Delta{Content: *content})
	return 1, nil
}
