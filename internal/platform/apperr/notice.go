// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package apperr

import (
	"fmt"
	"net/http"
)

// Severity grades a [Notice] for presentation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Notice is the user-facing rendering of a classified error. The hosting UI
// displays it verbatim; the core never formats errors anywhere else.
type Notice struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	SuggestedAction string   `json:"suggestedAction"`
	CanRetry        bool     `json:"canRetry"`
}

// Display maps any error to a [Notice] using fixed per-status rules.
//
// resourceLabel names what the caller was doing (e.g. "course", "thumbnail
// upload") and is woven into the not-found and fallback descriptions. It may
// be empty.
func Display(err error, resourceLabel string) Notice {
	fallbackDescription := "Request failed."
	if resourceLabel != "" {
		fallbackDescription = fmt.Sprintf("Unable to load %s. Please try again.", resourceLabel)
	}

	notice := Notice{
		Title:           "Request failed",
		Description:     fallbackDescription,
		Severity:        SeverityError,
		SuggestedAction: "Please try again.",
		CanRetry:        true,
	}
	if err != nil && err.Error() != "" {
		notice.Description = err.Error()
	}

	switch status := StatusOf(err); {
	case status == http.StatusUnauthorized:
		notice.Title = "Session expired"
		notice.Description = "Your session has expired. Please sign in again."
		notice.SuggestedAction = "Sign in"
		notice.CanRetry = false

	case status == http.StatusForbidden:
		notice.Title = "Access denied"
		notice.Description = "You do not have permission to perform this action."
		notice.SuggestedAction = "Switch accounts or request access."
		notice.Severity = SeverityWarning
		notice.CanRetry = false

	case status == http.StatusNotFound:
		notice.Title = "Not found"
		notice.Description = "The requested item could not be found."
		if resourceLabel != "" {
			notice.Description = fmt.Sprintf("%s could not be found or was removed.", resourceLabel)
		}
		notice.SuggestedAction = "Return to the previous page."
		notice.Severity = SeverityWarning
		notice.CanRetry = false

	case status == http.StatusConflict:
		notice.Title = "Conflict"
		if err.Error() == "" {
			notice.Description = "This resource is in a conflicting state. Please refresh and try again."
		}
		notice.SuggestedAction = "Refresh and try again."

	case status == http.StatusTooManyRequests || IsRateLimit(err):
		notice.Title = "Rate limit reached"
		notice.Severity = SeverityWarning
		notice.SuggestedAction = "Retry shortly."
		notice.Description = "Too many requests. Please slow down and retry shortly."
		if err != nil && err.Error() != "" {
			notice.Description = err.Error()
		}
		if retryAfter, ok := RetryAfterOf(err); ok {
			wait := FormatRetryAfter(retryAfter)
			notice.Description = fmt.Sprintf("%s Try again in %s.", notice.Description, wait)
			notice.SuggestedAction = fmt.Sprintf("Retry after %s.", wait)
		}

	case status >= http.StatusInternalServerError:
		notice.Title = "Server error"
		notice.Description = "We hit a server issue. Please try again shortly."
		notice.SuggestedAction = "Retry or contact an administrator if the issue persists."
	}

	return notice
}
