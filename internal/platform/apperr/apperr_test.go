// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package apperr_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/platform/apperr"
)

/*
TestParseRetryAfter covers the three accepted header shapes plus absence.
*/
func TestParseRetryAfter(t *testing.T) {
	t.Run("numeric_seconds", func(t *testing.T) {
		d, ok := apperr.ParseRetryAfter("120")
		require.True(t, ok)
		assert.Equal(t, 120*time.Second, d)
	})

	t.Run("http_date_in_future", func(t *testing.T) {
		at := time.Now().Add(10 * time.Second).UTC()
		d, ok := apperr.ParseRetryAfter(at.Format(http.TimeFormat))
		require.True(t, ok)
		// The format has second granularity, so allow slack on both sides.
		assert.InDelta(t, float64(10*time.Second), float64(d), float64(2*time.Second))
	})

	t.Run("http_date_in_past_clamps_to_zero", func(t *testing.T) {
		at := time.Now().Add(-30 * time.Second).UTC()
		d, ok := apperr.ParseRetryAfter(at.Format(http.TimeFormat))
		require.True(t, ok)
		assert.Equal(t, time.Duration(0), d)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := apperr.ParseRetryAfter("")
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := apperr.ParseRetryAfter("soon")
		assert.False(t, ok)
	})
}

/*
TestClassify_MessagePrecedence verifies structured error message beats
top-level message beats status text beats the fixed fallback.
*/
func TestClassify_MessagePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		code    string
	}{
		{
			"structured_error_wins",
			http.StatusBadRequest,
			`{"error":{"code":"INVALID_SLUG","message":"Slug is invalid"},"message":"outer"}`,
			"Slug is invalid",
			"INVALID_SLUG",
		},
		{
			"top_level_message_second",
			http.StatusBadRequest,
			`{"message":"Bad payload"}`,
			"Bad payload",
			"400",
		},
		{
			"status_text_third",
			http.StatusBadGateway,
			``,
			"Bad Gateway",
			"502",
		},
		{
			"numeric_code_accepted",
			http.StatusConflict,
			`{"error":{"code":409,"message":"Already published"}}`,
			"Already published",
			"409",
		},
		{
			"non_json_body_ignored",
			http.StatusInternalServerError,
			`<html>boom</html>`,
			"Internal Server Error",
			"500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apperr.Classify(tt.status, http.Header{}, []byte(tt.body))
			api := apperr.AsAPIError(err)
			require.NotNil(t, api)
			assert.Equal(t, tt.status, api.Status)
			assert.Equal(t, tt.message, api.Message)
			assert.Equal(t, tt.code, api.Code)
		})
	}
}

func TestClassify_RateLimit(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "30")

	err := apperr.Classify(http.StatusTooManyRequests, header, nil)
	assert.True(t, apperr.IsRateLimit(err))

	retryAfter, ok := apperr.RetryAfterOf(err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, retryAfter)

	// Embedded APIError remains reachable through errors.As.
	api := apperr.AsAPIError(err)
	require.NotNil(t, api)
	assert.Equal(t, http.StatusTooManyRequests, api.Status)
}

/*
TestDisplay checks the fixed presentation rules per status class.
*/
func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		title    string
		canRetry bool
		severity apperr.Severity
	}{
		{"unauthorized", http.StatusUnauthorized, "Session expired", false, apperr.SeverityError},
		{"forbidden", http.StatusForbidden, "Access denied", false, apperr.SeverityWarning},
		{"not_found", http.StatusNotFound, "Not found", false, apperr.SeverityWarning},
		{"conflict", http.StatusConflict, "Conflict", true, apperr.SeverityError},
		{"server_error", http.StatusServiceUnavailable, "Server error", true, apperr.SeverityError},
		{"unknown_defaults", http.StatusTeapot, "Request failed", true, apperr.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apperr.Classify(tt.status, http.Header{}, nil)
			notice := apperr.Display(err, "course")
			assert.Equal(t, tt.title, notice.Title)
			assert.Equal(t, tt.canRetry, notice.CanRetry)
			assert.Equal(t, tt.severity, notice.Severity)
		})
	}

	t.Run("rate_limit_appends_delay", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "45")
		err := apperr.Classify(http.StatusTooManyRequests, header, nil)

		notice := apperr.Display(err, "")
		assert.Equal(t, "Rate limit reached", notice.Title)
		assert.Contains(t, notice.Description, "45 seconds")
		assert.Equal(t, "Retry after 45 seconds.", notice.SuggestedAction)
		assert.True(t, notice.CanRetry)
	})
}

func TestFormatRetryAfter(t *testing.T) {
	assert.Equal(t, "1 second", apperr.FormatRetryAfter(200*time.Millisecond))
	assert.Equal(t, "1 second", apperr.FormatRetryAfter(time.Second))
	assert.Equal(t, "45 seconds", apperr.FormatRetryAfter(45*time.Second))
}
