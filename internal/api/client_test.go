// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package api_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/api"
	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/config"
	"github.com/asharvi/admin-core/internal/platform/transport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testAuthPaths = config.AuthPaths{
	Login:   "/auth/login",
	Refresh: "/auth/refresh",
	Logout:  "/auth/logout",
	Me:      "/auth/me",
}

// tokenBox is a goroutine-safe credential holder standing in for whatever
// store the host application uses.
type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) set(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func newTestClient(t *testing.T, serverURL string, box *tokenBox, cfg *api.Config) *api.Client {
	t.Helper()
	base := api.Config{
		BaseURL:     serverURL,
		Environment: config.Staging,
		AuthPaths:   testAuthPaths,
		Token:       box.get,
	}
	if cfg != nil {
		base.OnAuthFailure = cfg.OnAuthFailure
		base.Observe = cfg.Observe
	}
	return api.New(base, transport.New(testLogger()), testLogger())
}

/*
TestSingleFlightRefresh drives many concurrent requests that each receive a
401 on their first attempt and asserts exactly one refresh exchange happens.
*/
func TestSingleFlightRefresh(t *testing.T) {
	var refreshCalls atomic.Int64
	box := &tokenBox{token: "stale"}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		box.set("fresh")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/admin/courses", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, nil)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Get(context.Background(), "/admin/courses")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), refreshCalls.Load(), "concurrent 401s must share one refresh exchange")
}

func TestAuthRouteNeverRetries(t *testing.T) {
	var refreshCalls, loginCalls atomic.Int64
	box := &tokenBox{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		loginCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, nil)
	_, err := client.Login(context.Background(), "admin@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	assert.Equal(t, int64(1), loginCalls.Load())
	assert.Equal(t, int64(0), refreshCalls.Load(), "a 401 on an auth route must not trigger refresh")
}

func TestRetryHappensAtMostOnce(t *testing.T) {
	var courseCalls, refreshCalls atomic.Int64
	var authFailures atomic.Int64
	box := &tokenBox{token: "always-stale"}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusNoContent) // refresh "succeeds" but the token stays bad
	})
	mux.HandleFunc("/admin/courses", func(w http.ResponseWriter, r *http.Request) {
		courseCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, &api.Config{
		OnAuthFailure: func() { authFailures.Add(1) },
	})
	_, err := client.Get(context.Background(), "/admin/courses")

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	assert.Equal(t, int64(2), courseCalls.Load(), "original attempt plus exactly one replay")
	assert.Equal(t, int64(1), refreshCalls.Load())
	// The second 401 is terminal but the refresh itself succeeded, so the
	// forced sign-out hook is not invoked on this path.
	assert.Equal(t, int64(0), authFailures.Load())
}

func TestRefreshFailureForcesSignOut(t *testing.T) {
	var authFailures atomic.Int64
	box := &tokenBox{token: "stale"}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"SESSION_GONE","message":"Refresh token expired"}}`))
	})
	mux.HandleFunc("/admin/courses", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, &api.Config{
		OnAuthFailure: func() { authFailures.Add(1) },
	})
	_, err := client.Get(context.Background(), "/admin/courses")

	require.Error(t, err)
	assert.Equal(t, int64(1), authFailures.Load())
	// The refresh error is classified, so it wins over the original error.
	api := apperr.AsAPIError(err)
	require.NotNil(t, api)
	assert.Equal(t, "SESSION_GONE", api.Code)
}

func TestSkipRefreshOption(t *testing.T) {
	var refreshCalls atomic.Int64
	box := &tokenBox{}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/admin/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, nil)
	_, err := client.Get(context.Background(), "/admin/ping", api.SkipRefresh())

	require.Error(t, err)
	assert.Equal(t, int64(0), refreshCalls.Load())
}

func TestObserveHookSeesAuthAndRateErrors(t *testing.T) {
	var observed []int
	var mu sync.Mutex
	box := &tokenBox{}

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/admin/limited", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/admin/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, box, &api.Config{
		Observe: func(path string, err error) {
			mu.Lock()
			observed = append(observed, apperr.StatusOf(err))
			mu.Unlock()
		},
	})

	_, _ = client.Get(context.Background(), "/admin/forbidden")
	_, _ = client.Get(context.Background(), "/admin/limited")
	_, _ = client.Get(context.Background(), "/admin/broken")

	assert.ElementsMatch(t, []int{http.StatusForbidden, http.StatusTooManyRequests}, observed,
		"only 401/403/429 reach the observe hook")
}

func TestMe_FallsBackToTokenClaims(t *testing.T) {
	// Unsigned-but-well-formed JWT with userId and roles claims. Signature
	// is irrelevant: the client decodes without verification.
	const token = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJ1c2VySWQiOiJ1LTEiLCJyb2xlcyI6WyJhZG1pbiJdfQ." +
		"c2lnbmF0dXJl"

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	box := &tokenBox{token: token}
	client := newTestClient(t, server.URL, box, nil)

	identity, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UserID)
	assert.True(t, identity.IsAdmin())
}
