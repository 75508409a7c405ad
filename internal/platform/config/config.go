// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (transport, uploader, editor) via constructors.
  - Zero Hidden State: No global variables are used to store config.

The admin core talks to one of exactly two backend deployments ("staging" and
"production"); any unrecognized environment value normalizes to staging so a
typo can never point a write at production.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Environments

// Environment names the backend deployment a client session is bound to.
type Environment string

const (
	// Staging is the default, non-production deployment.
	Staging Environment = "staging"
	// Production is the live deployment. Destructive actions against it
	// require stronger confirmation in the editor.
	Production Environment = "production"
)

// NormalizeEnvironment coerces an arbitrary value to one of the two
// recognized environments. Unknown values resolve to [Staging].
func NormalizeEnvironment(value string) Environment {
	if Environment(value) == Production {
		return Production
	}
	return Staging
}

// # Configuration Schema

// Config holds all runtime configuration for the Asharvi admin core.
type Config struct {

	// Backend base URLs, one per recognized environment.
	StagingBaseURL    string `env:"ASHARVI_API_BASE_URL_STAGING"    envDefault:"http://localhost:8081"`
	ProductionBaseURL string `env:"ASHARVI_API_BASE_URL_PRODUCTION" envDefault:""`

	// Default environment for new sessions.
	Environment string `env:"ASHARVI_ADMIN_ENV" envDefault:"staging"`

	// Auth route paths (logical endpoints, overridable per deployment).
	LoginPath   string `env:"ASHARVI_AUTH_LOGIN_PATH"   envDefault:"/auth/login"`
	RefreshPath string `env:"ASHARVI_AUTH_REFRESH_PATH" envDefault:"/auth/refresh"`
	LogoutPath  string `env:"ASHARVI_AUTH_LOGOUT_PATH"  envDefault:"/auth/logout"`
	MePath      string `env:"ASHARVI_AUTH_ME_PATH"      envDefault:"/auth/me"`

	// Upload endpoint paths.
	ThumbnailUploadPath  string `env:"ASHARVI_UPLOAD_THUMBNAIL_PATH"  envDefault:"/admin/uploads/thumbnail"`
	AttachmentUploadPath string `env:"ASHARVI_UPLOAD_ATTACHMENT_PATH" envDefault:"/admin/uploads/attachment"`

	// Autosave debounce window in milliseconds.
	AutosaveDebounceMs int `env:"ASHARVI_AUTOSAVE_DEBOUNCE_MS" envDefault:"800"`

	// Courtesy client-side pacing. Zero disables the limiter.
	RequestsPerSecond float64 `env:"ASHARVI_REQUESTS_PER_SECOND" envDefault:"0"`

	Debug bool `env:"ASHARVI_DEBUG" envDefault:"false"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// DefaultEnvironment returns the normalized default environment for new sessions.
func (c *Config) DefaultEnvironment() Environment {
	return NormalizeEnvironment(c.Environment)
}

// BaseURL resolves the API base URL for the given environment.
func (c *Config) BaseURL(environment Environment) string {
	if NormalizeEnvironment(string(environment)) == Production {
		return c.ProductionBaseURL
	}
	return c.StagingBaseURL
}

// AuthPaths bundles the three auth routes plus the identity endpoint.
type AuthPaths struct {
	Login   string
	Refresh string
	Logout  string
	Me      string
}

// AuthPaths returns the configured auth route set.
func (c *Config) AuthPaths() AuthPaths {
	return AuthPaths{
		Login:   c.LoginPath,
		Refresh: c.RefreshPath,
		Logout:  c.LogoutPath,
		Me:      c.MePath,
	}
}
