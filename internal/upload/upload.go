// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package upload implements the out-of-band binary upload channel.

Uploads share the authenticated client's credential and refresh contract but
cannot reuse its JSON transport: they need multipart bodies and incremental
progress reporting. The pipeline therefore drives its own *http.Client and
borrows only the refresh exchange (via the Refresher seam) from the API
client, preserving the single-flight invariant.

Size and extension policy is enforced by the caller before dispatch (see
CheckFile); the pipeline itself never re-validates.
*/
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/platform/headers"
	"github.com/asharvi/admin-core/internal/platform/transport"
)

// uploadTimeout is generous: attachment ceilings are 20 MiB and admin
// uplinks can be slow.
const uploadTimeout = 5 * time.Minute

// Refresher is the slice of the API client the pipeline needs: the shared
// single-flight refresh exchange.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Progress receives the 0-100 percentage of bytes sent. It is only called
// when the total size is known, and never after completion.
type Progress func(percent int)

// File is one binary payload to upload. Content is held in memory because
// a 401-triggered retry must replay the entire body.
type File struct {
	Name    string
	Content []byte
}

// Result is the backend's answer to a successful upload.
type Result struct {
	URL string `json:"url"`
}

// Config wires an [Uploader].
type Config struct {
	BaseURL        string
	Environment    config.Environment
	ThumbnailPath  string
	AttachmentPath string
	Token          transport.TokenSource
	Refresher      Refresher
}

// Uploader performs progress-reporting multipart uploads.
type Uploader struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// New constructs an [Uploader].
func New(cfg Config, log *slog.Logger) *Uploader {
	jar, _ := cookiejar.New(nil)
	return &Uploader{
		cfg:        cfg,
		httpClient: &http.Client{Jar: jar, Timeout: uploadTimeout},
		log:        log,
	}
}

// WithHTTPClient substitutes the underlying client (tests).
func (u *Uploader) WithHTTPClient(hc *http.Client) *Uploader {
	u.httpClient = hc
	return u
}

// UploadThumbnail uploads a course thumbnail image.
func (u *Uploader) UploadThumbnail(ctx context.Context, file File, onProgress Progress) (*Result, error) {
	return u.perform(ctx, u.cfg.ThumbnailPath, file, onProgress, ThumbnailMaxBytes, 0)
}

// UploadAttachment uploads a lesson attachment.
func (u *Uploader) UploadAttachment(ctx context.Context, file File, onProgress Progress) (*Result, error) {
	return u.perform(ctx, u.cfg.AttachmentPath, file, onProgress, AttachmentMaxBytes, 0)
}

// perform runs one upload attempt, refreshing and retrying exactly once on
// a first-attempt 401.
func (u *Uploader) perform(ctx context.Context, path string, file File, onProgress Progress, maxSize int64, attempt int) (*Result, error) {
	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, err
	}

	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = u.cfg.BaseURL + path
	}

	total := int64(len(body))
	reader := &progressReader{
		inner:      bytes.NewReader(body),
		total:      total,
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("upload: build request: %w", err)
	}
	req.ContentLength = total
	req.Header = headers.Build(headers.Options{Environment: u.cfg.Environment})
	req.Header.Set("Content-Type", contentType)
	if u.cfg.Token != nil {
		if bearer := u.cfg.Token(); bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: "Upload failed. Please try again.", Cause: err}
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized && attempt == 0 && u.cfg.Refresher != nil {
		if refreshErr := u.cfg.Refresher.Refresh(ctx); refreshErr != nil {
			return nil, normalizeError(refreshErr, maxSize)
		}
		u.log.Debug("upload_retrying_after_refresh", slog.String("path", path))
		return u.perform(ctx, path, file, onProgress, maxSize, 1)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		classified := apperr.Classify(resp.StatusCode, resp.Header, payload)
		return nil, normalizeError(classified, maxSize)
	}

	return decodeResult(payload), nil
}

// decodeResult tolerates both the {url} object shape and a bare URL string.
func decodeResult(payload []byte) *Result {
	result := &Result{}
	if json.Unmarshal(payload, result) == nil && result.URL != "" {
		return result
	}
	var bare string
	if json.Unmarshal(payload, &bare) == nil {
		return &Result{URL: bare}
	}
	return result
}

// encodeMultipart renders the single-file form body. The whole body lives
// in memory so its total size is known for progress reporting and replay.
func encodeMultipart(file File) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("upload: encode form: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("upload: encode form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("upload: encode form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// progressReader reports cumulative percentage as the transport drains the
// body. Total is always known here, so the callback always fires.
type progressReader struct {
	inner      *bytes.Reader
	total      int64
	sent       int64
	onProgress Progress
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 && r.onProgress != nil && r.total > 0 {
		r.sent += int64(n)
		percent := int(r.sent * 100 / r.total)
		if percent > 100 {
			percent = 100
		}
		r.onProgress(percent)
	}
	return n, err
}
