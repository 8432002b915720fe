// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud talks to chat completion providers.
//
// A Profile names an endpoint, credential, model, request protocol and
// response dialect. Client.BeginExchange posts the conversation and returns
// a channel of Delta values: text fragments in arrival order, closed when the
// provider is done. Two dialects are understood:
//
//   - DialectStream: incremental deltas, either as Server-Sent Events
//     (ProtocolOpenAI) or as newline-delimited JSON with an optional
//     "data: " prefix (ProtocolHTTP)
//   - DialectJSON: one complete response object, delivered as a single delta
//
// # Errors
//
// Request failures wrap ErrTransport. Non-200 replies are *StatusError values
// carrying the status code and body text; well-known codes also match
// ErrAuthFailed, ErrRateLimited, ErrModelNotFound and ErrInsufficientCredits
// through errors.Is. Malformed stream chunks are skipped. A single-JSON body
// without a message is reported as ErrIncompatibleResponse.
//
// # Usage
//
//	client := cloud.NewClient(logger)
//	deltas, err := client.BeginExchange(ctx, profile, []cloud.ChatMessage{
//	    {Role: "user", Content: "Hello"},
//	})
//	if err != nil {
//	    return err
//	}
//	for d := range deltas {
//	    if d.Err != nil {
//	        return d.Err
//	    }
//	    fmt.Print(d.Content)
//	}
//
// Credentials are never logged.
package cloud
