// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package stubapi is a self-contained, in-memory rendition of the Asharvi
admin backend.

It exists for two consumers: integration tests that need the full client
stack exercised against real HTTP, and local development of the admin CLI
without network access to staging. The wire contract - envelopes, error
bodies, auth flows, upload responses - mirrors what the production backend
emits, so the client cannot tell the difference.
*/
package stubapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/constants"
	"github.com/asharvi/admin-core/internal/platform/middleware"
	"github.com/asharvi/admin-core/internal/platform/respond"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger

	store   *Store
	auth    *AuthService
	uploads *UploadHandler

	// throttled counts down forced 429 responses on /admin routes.
	throttled atomic.Int64
}

// Options configure a stub server.
type Options struct {
	// Addr is the listen address, e.g. ":8080". Ignored when the router is
	// mounted in an httptest server.
	Addr string
	// Secret signs stub-issued access tokens.
	Secret []byte
	// Log receives request logs. Defaults to slog.Default().
	Log *slog.Logger
	// Development opens up CORS for local frontends.
	Development bool
}

func (o Options) IsDevelopment() bool { return o.Development }

// # Server Initialization

// NewServer constructs the stub backend with the full middleware chain and
// all route groups registered.
func NewServer(ctx context.Context, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("stub-signing-secret")
	}

	store := NewStore()
	auth := NewAuthService(opts.Secret)
	uploads := NewUploadHandler()

	server := &Server{
		log:     opts.Log,
		store:   store,
		auth:    auth,
		uploads: uploads,
	}

	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(opts.Log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(opts.Log))
	r.Use(middleware.CORS(opts))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes.
	r.Get("/health", server.liveness)
	r.Get("/ready", server.readiness)

	// # Application API
	//
	// Token verification is scoped, not global: a refresh exchange arrives
	// carrying an expired access token, and must still reach its handler.
	authenticate := middleware.Authenticate(auth)
	r.Route("/auth", func(authRoute chi.Router) {
		NewAuthHandler(auth).RegisterRoutes(authRoute, authenticate)
	})
	r.Route("/admin", func(adminRoute chi.Router) {
		adminRoute.Use(server.forcedThrottle)
		adminRoute.Use(authenticate)
		adminRoute.Use(middleware.RequireAdmin)
		NewCourseHandler(store).RegisterRoutes(adminRoute)
		uploads.RegisterRoutes(adminRoute)
	})

	server.router = r
	server.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}
	return server
}

// # Accessors

// Handler exposes the router for httptest mounting.
func (s *Server) Handler() http.Handler { return s.router }

// Store exposes the in-memory catalog for seeding.
func (s *Server) Store() *Store { return s.store }

// Auth exposes the credential service for seeding accounts.
func (s *Server) Auth() *AuthService { return s.auth }

// Uploads exposes received upload contents for assertions.
func (s *Server) Uploads() *UploadHandler { return s.uploads }

// Throttle forces the next n /admin requests to fail with 429 and a
// Retry-After hint. Used to exercise the client's rate-limit handling.
func (s *Server) Throttle(n int) { s.throttled.Store(int64(n)) }

func (s *Server) forcedThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		for {
			remaining := s.throttled.Load()
			if remaining <= 0 {
				break
			}
			if s.throttled.CompareAndSwap(remaining, remaining-1) {
				respond.Error(writer, request, apperr.TooManyRequests(constants.RateLimitRetryAfter))
				return
			}
		}
		next.ServeHTTP(writer, request)
	})
}

// # Health Probes

// liveness handles GET /health.
func (s *Server) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready. The stub has no external dependencies, so
// readiness reduces to liveness with the standard response shape.
func (s *Server) readiness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]any{
		"status": "ready",
		"checks": []any{},
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
