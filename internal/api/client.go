// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package api implements the authenticated request pipeline.

It wraps the transport with credential injection, a single-flight refresh
exchange shared across concurrent callers, and a bounded automatic retry:
a request failing with 401 is replayed at most once, after the shared
refresh settles.

Architecture:

  - Client: verb methods (Get/Post/Put/Patch/Delete) plus the three auth
    routes (Login/Refresh/Logout) and the identity lookup (Me).
  - Single-flight: concurrent 401s coalesce onto one refresh exchange via
    singleflight.Group; the pending handle clears on settle, so a later 401
    starts a fresh exchange.
  - Hooks: an auth-failure hook forces sign-out when refresh fails, and an
    observe hook reports 401/403/429 errors for diagnostics without the
    transport knowing anything about logging policy.
*/
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/platform/headers"
	"github.com/asharvi/admin-core/internal/platform/sec"
	"github.com/asharvi/admin-core/internal/platform/transport"
)

// refreshKey is the single-flight key for the refresh exchange. There is
// exactly one credential per client, so one key suffices.
const refreshKey = "refresh"

// Config wires a [Client].
type Config struct {
	// BaseURL is the backend deployment this client talks to.
	BaseURL string
	// Environment tags outgoing requests (see the headers package).
	Environment config.Environment
	// AuthPaths are the login/refresh/logout/me routes.
	AuthPaths config.AuthPaths
	// Token yields the current access token; empty means unauthenticated.
	Token transport.TokenSource
	// OnSession receives the access token from successful login and refresh
	// exchanges, so the host can rotate what Token yields. Optional.
	OnSession func(accessToken string)
	// OnAuthFailure runs when a refresh exchange fails terminally, so the
	// host can force sign-out. Optional.
	OnAuthFailure func()
	// Observe receives every propagated 401/403/429 with the failing path.
	// Optional; this is the seam diagnostics attaches to.
	Observe func(path string, err error)
	// UserAgent is echoed in request headers when short enough.
	UserAgent string
}

// Client is the authenticated request pipeline.
type Client struct {
	cfg       Config
	transport *transport.Client
	log       *slog.Logger
	refresh   singleflight.Group
}

// New constructs a [Client] over the given transport.
func New(cfg Config, tr *transport.Client, log *slog.Logger) *Client {
	return &Client{cfg: cfg, transport: tr, log: log}
}

// BaseURL returns the deployment base URL this client is bound to.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Environment returns the environment tag this client is bound to.
func (c *Client) Environment() config.Environment { return c.cfg.Environment }

// # Call options

type callOptions struct {
	skipRefresh bool
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

// SkipRefresh opts this call out of the automatic refresh-and-retry path.
func SkipRefresh() CallOption {
	return func(o *callOptions) { o.skipRefresh = true }
}

// # Verb methods

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...CallOption) (*transport.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...CallOption) (*transport.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...CallOption) (*transport.Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...CallOption) (*transport.Response, error) {
	return c.do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) (*transport.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts...)
}

// # Request pipeline

func (c *Client) do(ctx context.Context, method, path string, body any, opts ...CallOption) (*transport.Response, error) {
	options := callOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	resp, err := c.send(ctx, method, path, body)
	if err == nil {
		return resp, nil
	}

	if apperr.StatusOf(err) == http.StatusUnauthorized && !c.isAuthRoute(path) && !options.skipRefresh {
		if refreshErr := c.Refresh(ctx); refreshErr != nil {
			if c.cfg.OnAuthFailure != nil {
				c.cfg.OnAuthFailure()
			}
			// Prefer the refresh failure when it is classified; otherwise
			// the original request's error is the more useful one.
			if apperr.AsAPIError(refreshErr) != nil {
				return nil, c.observe(path, refreshErr)
			}
			return nil, c.observe(path, err)
		}
		// Replay exactly once. The transport re-reads the token source, so
		// the replay picks up the refreshed credential.
		resp, err = c.send(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
	}

	return nil, c.observe(path, err)
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*transport.Response, error) {
	return c.transport.Send(ctx, c.cfg.BaseURL, path, c.cfg.Token, transport.Options{
		Method: method,
		Body:   body,
		Header: headers.Build(headers.Options{
			Environment:        c.cfg.Environment,
			UserAgent:          c.cfg.UserAgent,
			IncludeContentType: body != nil,
		}),
	})
}

func (c *Client) isAuthRoute(path string) bool {
	return path == c.cfg.AuthPaths.Login ||
		path == c.cfg.AuthPaths.Refresh ||
		path == c.cfg.AuthPaths.Logout
}

// observe reports 401/403/429 failures to the injected hook, then passes
// the error through unchanged.
func (c *Client) observe(path string, err error) error {
	switch apperr.StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		if c.cfg.Observe != nil {
			c.cfg.Observe(path, err)
		}
	}
	return err
}

// # Auth routes

// Login exchanges credentials for a session. Never triggers refresh.
func (c *Client) Login(ctx context.Context, email, password string) (*transport.Response, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.do(ctx, http.MethodPost, c.cfg.AuthPaths.Login, body, SkipRefresh())
	if err != nil {
		return nil, err
	}
	c.adoptSession(resp)
	return resp, nil
}

// Logout tears the session down server-side. Never triggers refresh.
func (c *Client) Logout(ctx context.Context) (*transport.Response, error) {
	return c.do(ctx, http.MethodPost, c.cfg.AuthPaths.Logout, nil, SkipRefresh())
}

// Refresh performs the refresh-token exchange.
//
// All concurrent callers - verb methods replaying 401s, the uploader, and
// direct calls - share one in-flight exchange; the memoized handle clears
// when the exchange settles, success or failure.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refresh.Do(refreshKey, func() (any, error) {
		resp, err := c.send(ctx, http.MethodPost, c.cfg.AuthPaths.Refresh, nil)
		if err != nil {
			return nil, err
		}
		c.adoptSession(resp)
		return resp, nil
	})
	return err
}

// adoptSession hands a freshly issued access token to the host. The wire
// shape is shared by the login and refresh responses.
func (c *Client) adoptSession(resp *transport.Response) {
	if c.cfg.OnSession == nil || resp == nil || resp.Data == nil {
		return
	}
	var wire struct {
		AccessToken string `json:"accessToken"`
	}
	if json.Unmarshal(resp.Data, &wire) == nil && wire.AccessToken != "" {
		c.cfg.OnSession(wire.AccessToken)
	}
}

// # Identity

// Identity describes the signed-in user as reported by the backend.
type Identity struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	for _, role := range i.Roles {
		if role == "admin" {
			return true
		}
	}
	return false
}

// Me resolves the current identity from the backend's identity endpoint.
//
// When the endpoint fails but an access token is present locally, the token
// claims are decoded (unverified) as a display-only fallback, matching how
// the admin UI stays usable during partial backend outages.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	resp, err := c.Get(ctx, c.cfg.AuthPaths.Me)
	if err == nil && resp.Data != nil {
		var wire struct {
			UserID  string   `json:"userId"`
			Subject string   `json:"sub"`
			Roles   []string `json:"roles"`
		}
		if jsonErr := json.Unmarshal(resp.Data, &wire); jsonErr == nil {
			id := &Identity{UserID: wire.UserID, Roles: wire.Roles}
			if id.UserID == "" {
				id.UserID = wire.Subject
			}
			return id, nil
		}
	}

	if c.cfg.Token != nil {
		if claims, decodeErr := sec.DecodeUnverified(c.cfg.Token()); decodeErr == nil {
			c.log.Debug("identity_endpoint_unavailable_using_token_claims")
			return &Identity{UserID: claims.Identity(), Roles: claims.RoleList()}, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return nil, apperr.Validation("Identity response was empty")
}
