// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package constants provides centralized, immutable values for the admin core.

It defines default timeouts, rate limits, and cross-cutting keys shared
between the client packages and the local stub backend.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the stub HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuer and lifetimes for stub-issued credentials.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "asharvi-admin-core"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Uploads stream multipart bodies, so this is generous.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// RateLimitRetryAfter is the Retry-After hint sent with 429 responses.
	RateLimitRetryAfter = 15 * time.Second
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in stub-issued JWTs.
	AuthIssuer = "asharvi.dev"

	// AccessTokenTTL is the lifetime of stub-issued access tokens.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of stub-issued refresh tokens.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/auth"

	// RoleAdmin is the role required for every /admin route.
	RoleAdmin = "admin"
)

// # Headers

const (
	HeaderXRequestID    = "X-Request-Id"
	HeaderRetryAfter    = "Retry-After"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)
