// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package apperr defines the centralized error taxonomy for the admin core.

It classifies raw transport responses into typed errors that the rest of the
client can branch on without re-reading status codes or response bodies.

Architecture:

  - APIError: A classified non-2xx response carrying status, code, message and details.
  - RateLimitError: A 429 specialization of APIError carrying a retry-after hint.
  - TransportError: A network-level failure with no HTTP response at all.
  - ValidationError: A local, pre-network failure that must never reach the wire.
  - Notice: The user-facing presentation mapping of any classified error.

Every error that leaves the transport layer is one of these types, so callers
can rely on [errors.As] rather than string matching.
*/
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// fallbackMessage is used when neither the response body nor the status line
// yields anything human-readable.
const fallbackMessage = "Request failed"

// # Taxonomy

// APIError is a classified non-2xx HTTP response.
type APIError struct {
	// Status is the HTTP response status code.
	Status int `json:"status"`
	// Code is the machine-readable error identifier from the response body,
	// falling back to the numeric status when the body carries none.
	Code string `json:"code"`
	// Message is the human-readable description, resolved by precedence:
	// structured error message, top-level message, HTTP status text, fallback.
	Message string `json:"error"`
	// Details is the server's structured detail payload, passed through opaquely.
	Details json.RawMessage `json:"details,omitempty"`
	// RetryAfter is the parsed Retry-After hint, when the server sent one.
	RetryAfter *time.Duration `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.Message }

// RateLimitError is the 429 specialization of [APIError]. It is never
// retried automatically; callers surface RetryAfter as a countdown.
type RateLimitError struct {
	APIError
}

// Unwrap exposes the embedded [APIError] so that [errors.As] with a
// *APIError target matches rate-limit errors too.
func (e *RateLimitError) Unwrap() error { return &e.APIError }

// TransportError is a network-level failure: the request never produced an
// HTTP response (DNS failure, connection reset, context cancellation).
type TransportError struct {
	// Op names the failing operation, e.g. "GET /admin/courses".
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Cause)
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *TransportError) Unwrap() error { return e.Cause }

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a local, pre-network failure (invalid slug, malformed
// video URL, mismatched delete confirmation). It never reaches the wire.
type ValidationError struct {
	Message string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

// Validation creates a [ValidationError] with optional per-field details.
func Validation(message string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// # Classification

// wireError mirrors the two error body shapes the backend emits:
// {error:{code,message,details}} and the flatter {message,details}.
type wireError struct {
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// Classify maps a non-2xx response to a typed error.
//
// Status 429 yields a [*RateLimitError]; every other status yields a
// [*APIError]. The body may be nil, empty, or non-JSON; classification never
// fails, it only degrades toward the HTTP status text.
func Classify(status int, header http.Header, body []byte) error {
	base := APIError{
		Status:  status,
		Code:    strconv.Itoa(status),
		Message: statusMessage(status),
	}

	if retryAfter, ok := ParseRetryAfter(header.Get("Retry-After")); ok {
		d := retryAfter
		base.RetryAfter = &d
	}

	var wire wireError
	if len(body) > 0 && json.Unmarshal(body, &wire) == nil {
		if wire.Error != nil {
			if code := decodeCode(wire.Error.Code); code != "" {
				base.Code = code
			}
			if wire.Error.Message != "" {
				base.Message = wire.Error.Message
			}
			base.Details = wire.Error.Details
		}
		if base.Message == statusMessage(status) && wire.Message != "" {
			base.Message = wire.Message
		}
		if base.Details == nil {
			base.Details = wire.Details
		}
	}

	if status == http.StatusTooManyRequests {
		if base.Message == statusMessage(status) {
			base.Message = "Too many requests. Please wait before retrying."
		}
		return &RateLimitError{APIError: base}
	}
	return &base
}

// decodeCode accepts the code field as either a JSON string or a number.
func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return strconv.Itoa(n)
	}
	return ""
}

func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fallbackMessage
}

// ParseRetryAfter parses a Retry-After header value.
//
// A non-negative numeric value is treated as seconds. An HTTP date is
// converted to the delta from now, clamped to zero for dates in the past.
// The second return value is false when the header is absent or unparseable.
func ParseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		delta := time.Until(at)
		if delta < 0 {
			delta = 0
		}
		return delta, true
	}
	return 0, false
}

// FormatRetryAfter renders a retry delay for display, rounding up to whole
// seconds so "wait 0 seconds" never appears.
func FormatRetryAfter(d time.Duration) string {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds <= 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

// # Helpers

// StatusOf extracts the HTTP status from a classified error, or 0 when err
// carries none (transport and validation errors).
func StatusOf(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		return api.Status
	}
	return 0
}

// RetryAfterOf extracts the retry-after hint from a classified error.
func RetryAfterOf(err error) (time.Duration, bool) {
	var api *APIError
	if errors.As(err, &api) && api.RetryAfter != nil {
		return *api.RetryAfter, true
	}
	return 0, false
}

// IsRateLimit reports whether err (or any error in its chain) is a [*RateLimitError].
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// AsAPIError extracts the [*APIError] from err's chain. It returns nil if not found.
func AsAPIError(err error) *APIError {
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	return nil
}
