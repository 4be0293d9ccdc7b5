// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package auth is the Embershelf membership service.

Production deployments delegate membership to the external member CMS; this
package is the self-contained stand-in that issues the RS256 access tokens the
rest of the platform verifies through the platform/sec boundary. It owns
enrollment, credential checks, and the refresh-token session ledger.

The core catalog packages never import this package. They consume identity
exclusively as verified claims, so swapping this service for the real CMS is a
wiring change in cmd/api.
*/
package auth

import (
	"time"

	"github.com/embershelf/embershelf/internal/platform/sec"
)

// # Domain Entities

// Member is a registered Embershelf account: a reader by default, an author
// or curator once elevated.
type Member struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Bio          string       `json:"bio,omitempty"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session is one refresh-token grant, tracked per device so members can
// review and revoke them individually.
type Session struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Field names shared between validation and response mapping.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldDisplayName     = "display_name"
	FieldLogin           = "login"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldMessage         = "message"
)
