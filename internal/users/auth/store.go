// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package auth

import "context"

// # Member Data Access

// MemberRepository is the persistence contract for member credentials.
// Profile mutation and soft-deletion live in the account package; this
// repository only covers what enrollment and sign-in need.
type MemberRepository interface {

	/*
		Create persists a brand-new member.

		Uniqueness is enforced by the database: a username or email collision
		comes back as an [apperr.Conflict], never as a raw constraint error.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: Conflict on duplicate identity, or persistence failures
	*/
	Create(context context.Context, member *Member) error

	/*
		FindByID returns the member with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Member: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Member, error)

	/*
		FindByLogin resolves a sign-in handle, which may be either the
		username or the email address, case-insensitively.

		Parameters:
		  - context: context.Context
		  - login: string

		Returns:
		  - *Member: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByLogin(context context.Context, login string) (*Member, error)

	/*
		UpdatePassword replaces only the member's password hash.

		Parameters:
		  - context: context.Context
		  - memberID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, memberID, newHash string) error
}

// # Session Data Access

// SessionRepository is the persistence contract for refresh-token sessions.
type SessionRepository interface {

	// Create persists a new tracked session for a successful sign-in.
	Create(context context.Context, session *Session) error

	// FindByTokenHash returns the live (unrevoked, unexpired) session
	// matching the given token hash.
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// Revoke permanently invalidates one session.
	Revoke(context context.Context, sessionID string) error

	// RevokeOthers invalidates every session of the member except the
	// current one. Used after a password change.
	RevokeOthers(context context.Context, memberID, currentSessionID string) error

	// RevokeAll invalidates every session of the member.
	RevokeAll(context context.Context, memberID string) error

	// DeleteExpired physically removes sessions past their expiry.
	DeleteExpired(context context.Context) error
}

// # Enrollment Side Effects

// Provisioner seeds the member-owned records that must exist from the first
// sign-in. The account package implements it by writing default reading
// preferences.
type Provisioner interface {
	ProvisionDefaults(context context.Context, memberID string) error
}
