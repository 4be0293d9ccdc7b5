// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/sec"
	"github.com/embershelf/embershelf/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens for verified members.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given member.
	GenerateAccessToken(memberID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements the membership use cases: enrollment, sign-in,
// refresh-token rotation, and password changes.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, enrollment,
// or sign-in logic must be reviewed by the security team.
type Service struct {
	members     MemberRepository
	sessions    SessionRepository
	provisioner Provisioner
	tokens      TokenProvider
	logger      *slog.Logger
}

// NewService constructs a new membership [Service].
func NewService(
	members MemberRepository,
	sessions SessionRepository,
	provisioner Provisioner,
	tokens TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		members:     members,
		sessions:    sessions,
		provisioner: provisioner,
		tokens:      tokens,
		logger:      logger,
	}
}

// Grant is a successfully issued credential pair plus the member it belongs to.
type Grant struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	Member           *Member
}

// # Enrollment

// EnrollInput holds the data required to enroll a new member.
type EnrollInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Enroll hashes the password and persists a brand-new member account.

Description: Identity uniqueness is left to the database's partial unique
indexes rather than a read-then-write check, so two racing enrollments cannot
both land. A fresh member starts as a reader with default reading preferences
already provisioned.

Parameters:
  - context: context.Context
  - input: EnrollInput

Returns:
  - *Member: Created entity
  - error: Conflict (duplicate username or email) or storage errors
*/
func (service *Service) Enroll(context context.Context, input EnrollInput) (*Member, error) {
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	member := &Member{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
	}

	// The repository maps unique-index violations to client-safe conflicts.
	if err := service.members.Create(context, member); err != nil {
		return nil, err
	}

	// Seed default reading preferences so the first catalog request already
	// has a sensible content filter. Non-fatal: the preferences endpoint
	// falls back to the same defaults when the row is missing.
	if err := service.provisioner.ProvisionDefaults(context, member.ID); err != nil {
		service.logger.Warn("member_preference_provision_failed",
			slog.String("member_id", member.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("member_enrolled",
		slog.String("member_id", member.ID),
		slog.String("username", member.Username),
	)

	return member, nil
}

// # Sign-in & Rotation

// SignInInput defines credentials for an authentication attempt.
type SignInInput struct {
	Login     string // Username or email
	Password  string
	UserAgent string
	IPAddress string
}

/*
SignIn validates member credentials and issues a credential grant.

Description: Resolves the login handle, performs a constant-time password
comparison, and opens a tracked refresh session.

Parameters:
  - context: context.Context
  - input: SignInInput

Returns:
  - *Grant: Transport-ready credential pair
  - error: Unauthorized or internal failures
*/
func (service *Service) SignIn(context context.Context, input SignInInput) (*Grant, error) {
	member, err := service.members.FindByLogin(context, input.Login)

	// Generic message on both a missing member and a bad password, to
	// prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if !sec.CheckPasswordHash(input.Password, member.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.issueGrant(context, member, input.UserAgent, input.IPAddress)
}

/*
Refresh implements refresh-token rotation.

Description: Verifies the presented refresh token, revokes its session to
block replay, and issues a fresh grant tied to a new session.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *Grant: Rotated credential pair
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*Grant, error) {
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: the old session dies before the new one is born.
	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	member, err := service.members.FindByID(context, session.MemberID)
	if err != nil {
		return nil, apperr.Unauthorized("Member not found or suspended")
	}

	return service.issueGrant(context, member, userAgent, ipAddress)
}

// issueGrant signs an access token and opens a tracked refresh session.
// Shared by SignIn and Refresh so the two paths cannot drift.
func (service *Service) issueGrant(context context.Context, member *Member, userAgent, ipAddress string) (*Grant, error) {
	accessToken, err := service.tokens.GenerateAccessToken(member.ID, member.Username, string(member.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		MemberID:  member.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}
	if err := service.sessions.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &Grant{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
		Member:           member,
	}, nil
}

/*
SignOut revokes the session behind the presented refresh token.

Description: Idempotent. A token that is already revoked, expired, or unknown
still signs out cleanly.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) SignOut(context context.Context, refreshToken string) error {
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}

	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_signout_failed: %w", err)
	}
	return nil
}

// # Password Changes

/*
ChangePassword lets an authenticated member rotate their credentials.

Description: Verifies the current password, stores the new hash, and revokes
every other session so stale devices must sign in again.

Parameters:
  - context: context.Context
  - memberID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, memberID, currentPassword, newPassword, currentRefreshToken string) error {
	member, err := service.members.FindByID(context, memberID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, member.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}
	if err := service.members.UpdatePassword(context, memberID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Force re-login everywhere except the device making the change.
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(currentRefreshToken))
	if err == nil {
		_ = service.sessions.RevokeOthers(context, memberID, session.ID)
	}

	service.logger.Info("member_password_changed", slog.String("member_id", memberID))

	return nil
}
