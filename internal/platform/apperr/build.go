// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package apperr

import (
	"net/http"
	"time"
)

// # Constructors
//
// These build the same taxonomy from the serving side. The stub backend
// uses them so that its wire format round-trips through [Classify]
// unchanged.

// Unauthorized builds a 401 error.
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// Conflict builds a 409 error with a caller-chosen code.
func Conflict(code, message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: code, Message: message}
}

// PayloadTooLarge builds a 413 error.
func PayloadTooLarge(message string) *APIError {
	return &APIError{Status: http.StatusRequestEntityTooLarge, Code: "PAYLOAD_TOO_LARGE", Message: message}
}

// TooManyRequests builds a 429 error carrying a retry-after hint.
func TooManyRequests(retryAfter time.Duration) *RateLimitError {
	d := retryAfter
	return &RateLimitError{APIError: APIError{
		Status:     http.StatusTooManyRequests,
		Code:       "TOO_MANY_REQUESTS",
		Message:    "Too many requests. Please wait before retrying.",
		RetryAfter: &d,
	}}
}
