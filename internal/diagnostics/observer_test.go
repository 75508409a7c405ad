// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package diagnostics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/diagnostics"
	"github.com/asharvi/admin-core/internal/platform/apperr"
)

func TestAPIObserverRecordsStatusAndCode(t *testing.T) {
	sink := diagnostics.NewSink()
	observe := diagnostics.APIObserver(sink)

	observe("/admin/courses", apperr.Forbidden("Access denied"))

	events := sink.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, diagnostics.EventAPIError, events[0].Type)
	assert.Equal(t, "/admin/courses", events[0].Payload["path"])
	assert.Equal(t, 403, events[0].Payload["status"])
	assert.Equal(t, "FORBIDDEN", events[0].Payload["code"])
}

func TestAPIObserverRecordsRetryAfter(t *testing.T) {
	sink := diagnostics.NewSink()
	observe := diagnostics.APIObserver(sink)

	observe("/admin/courses", apperr.TooManyRequests(15*time.Second))

	events := sink.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, 429, events[0].Payload["status"])
	assert.Equal(t, 15, events[0].Payload["retryAfterSeconds"])
}
