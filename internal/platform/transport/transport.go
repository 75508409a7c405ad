// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package transport performs single HTTP calls against a backend deployment.

It owns exactly one concern: turn (baseURL, path, options) into a response or
a classified error. Credential refresh, retries and resource typing all live
above it.

Architecture:

  - Client: A thin wrapper over *http.Client with a shared cookie jar, so
    ambient cookie credentials always travel with requests.
  - TokenSource: A zero-argument accessor for the bearer token, decoupling
    the transport from credential storage.
  - Pacing: An optional rate.Limiter waits before dispatch, a courtesy
    measure against the backend's rate limits.
*/
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/asharvi/admin-core/internal/platform/apperr"
)

// defaultTimeout bounds a single request end to end. Uploads use their own
// transport with a longer deadline.
const defaultTimeout = 30 * time.Second

// TokenSource returns the current bearer token, or "" for an
// unauthenticated request.
type TokenSource func() string

// Options configures a single call.
type Options struct {
	// Method is the HTTP verb. Empty defaults to GET.
	Method string
	// Body, when non-nil, is JSON-serialized into the request.
	Body any
	// Header carries the pre-built header set (see the headers package).
	Header http.Header
}

// Response is the successful outcome of one call.
//
// Data is nil for 204 responses, non-JSON content types, and unparseable
// 2xx bodies. Callers must tolerate a nil payload on success.
type Response struct {
	Data   json.RawMessage
	Status int
	Header http.Header
}

// Client performs HTTP calls with shared cookies and optional pacing.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPacing installs a client-side limiter of rps requests per second.
// Zero or negative rps disables pacing.
func WithPacing(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New constructs a [Client]. The cookie jar is deliberately shared across
// all calls made through this client so session cookies persist.
func New(log *slog.Logger, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		httpClient: &http.Client{Jar: jar, Timeout: defaultTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one HTTP call.
//
// Paths already carrying a scheme bypass baseURL concatenation. A non-2xx
// status yields a classified error from the apperr taxonomy; a network-level
// failure yields a [*apperr.TransportError].
func (c *Client) Send(ctx context.Context, baseURL, path string, token TokenSource, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &apperr.TransportError{Op: op, Cause: err}
		}
	}

	var body io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(baseURL, path), body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}

	if opts.Header != nil {
		req.Header = opts.Header.Clone()
	}
	if req.Header.Get("Content-Type") == "" && opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		if bearer := token(); bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.TransportError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		classified := apperr.Classify(resp.StatusCode, resp.Header, payload)
		c.log.Debug("request_failed",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
		)
		return nil, classified
	}

	return &Response{
		Data:   decodePayload(resp, payload),
		Status: resp.StatusCode,
		Header: resp.Header,
	}, nil
}

// decodePayload extracts the JSON payload from a successful response.
// 204s, non-JSON content types and malformed JSON all yield nil rather than
// an error; success with an empty payload is a supported backend behavior.
func decodePayload(resp *http.Response, payload []byte) json.RawMessage {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	if !json.Valid(payload) {
		return nil
	}
	return json.RawMessage(payload)
}

// joinURL concatenates baseURL and path unless path is already absolute.
func joinURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return baseURL + path
}
