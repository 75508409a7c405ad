// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package diagnostics

import (
	"github.com/asharvi/admin-core/internal/platform/apperr"
)

// EventAPIError is recorded for every propagated 401/403/429.
const EventAPIError = "API_ERROR"

// APIObserver adapts a sink to the request pipeline's observation hook.
// Each reported error becomes one [EventAPIError] entry carrying the path,
// HTTP status and backend error code.
func APIObserver(sink *Sink) func(path string, err error) {
	return func(path string, err error) {
		payload := map[string]any{
			"path":   path,
			"status": apperr.StatusOf(err),
		}
		if api := apperr.AsAPIError(err); api != nil {
			payload["code"] = api.Code
		}
		if retryAfter, ok := apperr.RetryAfterOf(err); ok {
			payload["retryAfterSeconds"] = int(retryAfter.Seconds())
		}
		sink.Log(EventAPIError, payload)
	}
}
