// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured indicates the API key is not set.
var ErrNotConfigured = errors.New("OpenRouter API key not configured")

// ErrMalformedChoice indicates the first choice had no message content.
var ErrMalformedChoice = errors.New("first choice has no message content")

// ErrorKind classifies completion failures.
type ErrorKind int

const (
	// RequestFailed covers transport errors, non-JSON error responses,
	// undecodable or malformed bodies and any other failure before a reply
	// was obtained.
	RequestFailed ErrorKind = iota
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case RequestFailed:
		return "request_failed"
	default:
		return "unknown"
	}
}

// CompletionError is returned by Client.Complete for every failure.
type CompletionError struct {
	Kind   ErrorKind
	Status int // HTTP status when the endpoint answered, 0 otherwise
	Err    error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion %s (HTTP %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("completion %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CompletionError) Unwrap() error {
	return e.Err
}

// requestFailed wraps err, pulling the HTTP status out of go-openai errors.
func requestFailed(err error) *CompletionError {
	ce := &CompletionError{Kind: RequestFailed, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		ce.Status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		ce.Status = reqErr.HTTPStatusCode
	}
	return ce
}
