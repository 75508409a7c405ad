// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

// Package sec provides security primitives for the admin core.
//
// # Architecture
//
// The client never verifies token signatures - that is the backend's job.
// What it does need is a best-effort peek into an access token's claims to
// recover the signed-in identity when the identity endpoint is unreachable,
// and password hashing for the local stub backend.
package sec

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the claim set the backend embeds in access tokens.
//
// Roles may arrive either as a "roles" array or a single "role" string
// depending on backend version; [AccessClaims.RoleList] reconciles the two.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID string   `json:"userId,omitempty"`
	Role   string   `json:"role,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// Identity returns the stable user identifier: userId claim first, then the
// registered subject.
func (c *AccessClaims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// RoleList returns the effective roles, folding a legacy single "role"
// claim into the list form.
func (c *AccessClaims) RoleList() []string {
	if len(c.Roles) > 0 {
		return c.Roles
	}
	if c.Role != "" {
		return []string{c.Role}
	}
	return nil
}

// DecodeUnverified extracts claims from a JWT without checking its
// signature. Use only as a local fallback for display purposes; any
// authorization decision belongs to the backend.
func DecodeUnverified(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("sec: empty token")
	}
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("sec: malformed token: %w", err)
	}
	return claims, nil
}
