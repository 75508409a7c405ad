// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package headers derives the deterministic per-request header set every call
to the backend carries.

Each request gets a fresh correlation id plus a fixed client identity block
(app tag, version, environment), so backend logs can always be joined back
to an admin session without the transport knowing anything about logging.
*/
package headers

import (
	"math/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/asharvi/admin-core/internal/platform/config"
)

const (
	// ClientApp is the fixed application tag sent with every request.
	ClientApp = "asharvi-admin"
	// ClientVersion is the admin core build version.
	ClientVersion = "0.1.0-dev"

	// maxUserAgentLength bounds the echoed user agent to keep backend log
	// lines a predictable size.
	maxUserAgentLength = 200
)

// Options controls optional parts of the header set.
type Options struct {
	// Environment tags the request with the deployment it targets.
	// Unrecognized values normalize to staging.
	Environment config.Environment
	// UserAgent is echoed as X-Client-User-Agent when non-empty and short.
	UserAgent string
	// IncludeContentType adds the JSON content type for body-carrying calls.
	IncludeContentType bool
}

// Build produces the standard header set for one request.
func Build(opts Options) http.Header {
	h := http.Header{}
	h.Set("X-Request-Id", RequestID())
	h.Set("X-Client-App", ClientApp)
	h.Set("X-Client-Version", ClientVersion)
	h.Set("X-Client-Env", string(config.NormalizeEnvironment(string(opts.Environment))))

	if agent := strings.TrimSpace(opts.UserAgent); agent != "" && len(agent) < maxUserAgentLength {
		h.Set("X-Client-User-Agent", agent)
	}

	if opts.IncludeContentType {
		h.Set("Content-Type", "application/json")
	}

	return h
}

// RequestID returns a fresh v4 correlation id. If the system entropy source
// fails it falls back to a v4-shaped string from math/rand, which is still
// unique enough for log correlation.
func RequestID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return fallbackID()
}

const hexDigits = "0123456789abcdef"

func fallbackID() string {
	var b strings.Builder
	b.Grow(36)
	for _, c := range "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx" {
		switch c {
		case 'x':
			b.WriteByte(hexDigits[rand.Intn(16)])
		case 'y':
			// Variant bits: one of 8, 9, a, b.
			b.WriteByte(hexDigits[8+rand.Intn(4)])
		default:
			b.WriteByte(byte(c))
		}
	}
	return b.String()
}
