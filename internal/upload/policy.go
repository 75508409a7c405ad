// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package upload

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/asharvi/admin-core/internal/platform/apperr"
)

// # Upload policy
//
// Distinct ceilings apply to thumbnails versus generic attachments. The
// policy is checked by callers before any network dispatch; the pipeline
// trusts it.

const (
	// ThumbnailMaxBytes caps course thumbnail images.
	ThumbnailMaxBytes int64 = 5 * 1024 * 1024
	// AttachmentMaxBytes caps lesson attachments.
	AttachmentMaxBytes int64 = 20 * 1024 * 1024
)

// Kind selects which policy applies to a file.
type Kind string

const (
	KindThumbnail  Kind = "thumbnail"
	KindAttachment Kind = "attachment"
)

// allowedAttachmentExtensions is the attachment allow-list. Thumbnails are
// image-only.
var allowedAttachmentExtensions = []string{
	"pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx", "zip", "png", "jpg", "jpeg",
}

var allowedThumbnailExtensions = []string{"png", "jpg", "jpeg", "webp", "gif"}

// MaxBytes returns the byte ceiling for the kind.
func (k Kind) MaxBytes() int64 {
	if k == KindThumbnail {
		return ThumbnailMaxBytes
	}
	return AttachmentMaxBytes
}

// CheckFile validates name and size against the kind's policy. It returns
// a local validation error; nothing is sent over the network.
func CheckFile(name string, size int64, kind Kind) error {
	if size > kind.MaxBytes() {
		return apperr.Validation(fmt.Sprintf("File is too large. Maximum size is %s.", FormatBytes(kind.MaxBytes())))
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	allowed := allowedAttachmentExtensions
	if kind == KindThumbnail {
		allowed = allowedThumbnailExtensions
	}
	for _, candidate := range allowed {
		if ext == candidate {
			return nil
		}
	}
	return apperr.Validation(fmt.Sprintf("File type %q is not allowed.", ext))
}

// # Upload records

// Status tracks a single upload's lifecycle for the UI.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Record is the ephemeral, UI-facing view of one in-flight upload. It is
// never persisted.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// # Error type

// Error is the upload-specific failure, carrying a size/type-aware message
// instead of the raw server text.
type Error struct {
	Status     int
	Message    string
	RetryAfter *time.Duration
	Cause      error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying classified error, if any.
func (e *Error) Unwrap() error { return e.Cause }

// normalizeError converts a classified failure into an [*Error] whose
// message accounts for the configured maximum size and rate-limit hints.
func normalizeError(err error, maxSize int64) *Error {
	status := apperr.StatusOf(err)
	out := &Error{Status: status, Cause: err}
	if retryAfter, ok := apperr.RetryAfterOf(err); ok {
		d := retryAfter
		out.RetryAfter = &d
	}

	switch {
	case status == 413:
		out.Message = fmt.Sprintf("File is too large. Maximum size is %s.", FormatBytes(maxSize))
	case status == 429:
		if out.RetryAfter != nil {
			seconds := int((*out.RetryAfter + time.Second - 1) / time.Second)
			out.Message = fmt.Sprintf("Rate limited. Try again in %ds.", seconds)
		} else {
			out.Message = "Rate limited. Please slow down and retry."
		}
	case err != nil && err.Error() != "":
		var validation *apperr.ValidationError
		if errors.As(err, &validation) {
			out.Message = validation.Message
		} else if api := apperr.AsAPIError(err); api != nil {
			out.Message = api.Message
		} else {
			out.Message = "Upload failed. Please try again."
		}
	default:
		out.Message = "Upload failed. Please try again."
	}
	return out
}

// FormatBytes renders a byte count for humans: "0 B", "5.0 MB", "20 MB".
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	exponent := int(math.Log(float64(bytes)) / math.Log(1024))
	if exponent > len(units)-1 {
		exponent = len(units) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(exponent))
	if value >= 10 || exponent == 0 {
		return fmt.Sprintf("%.0f %s", value, units[exponent])
	}
	return fmt.Sprintf("%.1f %s", value, units[exponent])
}
