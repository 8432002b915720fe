// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROTOCOL AND DIALECT
// =============================================================================

// ProtocolKind selects how the request is addressed.
type ProtocolKind int

const (
	// ProtocolOpenAI posts to <endpoint>/chat/completions and reads SSE.
	ProtocolOpenAI ProtocolKind = iota
	// ProtocolHTTP posts to the endpoint exactly as configured.
	ProtocolHTTP
)

// String returns the configuration name of the protocol.
func (p ProtocolKind) String() string {
	switch p {
	case ProtocolOpenAI:
		return "openai"
	case ProtocolHTTP:
		return "http"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

// ParseProtocol accepts "openai", "http" and the legacy name "curl".
func ParseProtocol(s string) (ProtocolKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "openai":
		return ProtocolOpenAI, nil
	case "http", "curl", "custom":
		return ProtocolHTTP, nil
	}
	return 0, fmt.Errorf("unknown protocol %q (want openai or http)", s)
}

// Dialect selects the response format.
type Dialect int

const (
	// DialectStream is the incremental delta format.
	DialectStream Dialect = iota
	// DialectJSON is a single whole-message response object.
	DialectJSON
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectStream:
		return "stream"
	case DialectJSON:
		return "json"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect accepts "stream", "json" and the legacy marker "infini".
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream", "standard":
		return DialectStream, nil
	case "json", "single", "single-json", "infini":
		return DialectJSON, nil
	}
	return 0, fmt.Errorf("unknown dialect %q (want stream or json)", s)
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile describes one provider endpoint. Treat it as immutable once built;
// WithModel returns a modified copy.
type Profile struct {
	Name       string
	Endpoint   string
	Credential string
	Model      string
	Protocol   ProtocolKind
	Dialect    Dialect
	Headers    map[string]string
}

// String renders the profile for selection lists. The credential is omitted.
func (p *Profile) String() string {
	return fmt.Sprintf("%s - %s (%s/%s)", p.Name, p.Model, p.Protocol, p.Dialect)
}

// WithModel returns a copy of p using model.
func (p *Profile) WithModel(model string) *Profile {
	cp := *p
	cp.Model = model
	if p.Headers != nil {
		cp.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			cp.Headers[k] = v
		}
	}
	return &cp
}

// RequestURL returns the URL the exchange is posted to.
func (p *Profile) RequestURL() string {
	if p.Protocol == ProtocolOpenAI {
		return strings.TrimSuffix(p.Endpoint, "/") + "/chat/completions"
	}
	return p.Endpoint
}

// Matches reports whether the profile has the given name and model,
// ignoring case. Empty arguments match anything.
func (p *Profile) Matches(name, model string) bool {
	if name != "" && !strings.EqualFold(p.Name, name) {
		return false
	}
	if model != "" && !strings.EqualFold(p.Model, model) {
		return false
	}
	return true
}
