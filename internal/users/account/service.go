// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile management, reading preferences, and session
// transparency for members.
type Service struct {
	accounts    AccountRepository
	preferences PreferencesRepository
	sessions    SessionRepository
	logger      *slog.Logger
}

// NewService constructs a new account [Service].
func NewService(
	accounts AccountRepository,
	preferences PreferencesRepository,
	sessions SessionRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:    accounts,
		preferences: preferences,
		sessions:    sessions,
		logger:      logger,
	}
}

// defaultPreferences is the content filter every member starts with:
// sensitive tags hidden, nothing muted, no heat cap, no digest.
func defaultPreferences(memberID string) *Preferences {
	return &Preferences{
		UserID:        memberID,
		HideSensitive: true,
		UpdatedAt:     time.Now(),
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a member.

Parameters:
  - context: context.Context
  - memberID: string

Returns:
  - *auth.Member: The hydrated profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, memberID string) (*auth.Member, error) {
	member, err := service.accounts.FindByID(context, memberID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return member, nil
}

// UpdateProfileInput defines the mutable subset of profile fields. Nil
// pointers mean "leave unchanged".
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

/*
UpdateProfile applies a partial set of changes to a member's profile.

Description: Loads the current state, overlays the provided fields, and
persists the merged entity.

Parameters:
  - context: context.Context
  - memberID: string
  - input: UpdateProfileInput

Returns:
  - *auth.Member: The updated profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, memberID string, input UpdateProfileInput) (*auth.Member, error) {
	member, err := service.accounts.FindByID(context, memberID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	if input.DisplayName != nil {
		member.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		member.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		member.AvatarURL = *input.AvatarURL
	}

	if err := service.accounts.Update(context, member); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("member_profile_updated", slog.String("member_id", memberID))

	return member, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of a member account.

Description: Flags the account as deleted and terminates every active session
to force a global sign-out.

Parameters:
  - context: context.Context
  - memberID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, memberID string) error {
	if err := service.accounts.SoftDelete(context, memberID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	_ = service.sessions.RevokeAll(context, memberID)

	service.logger.Warn("member_account_deleted", slog.String("member_id", memberID))

	return nil
}

// # Preferences Management

/*
GetPreferences retrieves the reading preferences for a member.

Description: Members who never saved preferences still get the default
content filter back, so reads never need a provisioning check.

Parameters:
  - context: context.Context
  - memberID: string

Returns:
  - *Preferences: Current or default settings
  - error: Storage failures
*/
func (service *Service) GetPreferences(context context.Context, memberID string) (*Preferences, error) {
	prefs, err := service.preferences.FindByUserID(context, memberID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return defaultPreferences(memberID), nil
		}
		return nil, fmt.Errorf("account_service_get_preferences_failed: %w", err)
	}
	return prefs, nil
}

/*
UpdatePreferences persists new content and digest preferences for a member.

Parameters:
  - context: context.Context
  - prefs: *Preferences

Returns:
  - error: Storage failures
*/
func (service *Service) UpdatePreferences(context context.Context, prefs *Preferences) error {
	prefs.UpdatedAt = time.Now()
	if err := service.preferences.Upsert(context, prefs); err != nil {
		return fmt.Errorf("account_service_save_preferences_failed: %w", err)
	}

	service.logger.Info("member_preferences_updated", slog.String("member_id", prefs.UserID))

	return nil
}

/*
ProvisionDefaults seeds the default reading preferences for a new member.

Description: Called by the membership service during enrollment; the upsert
makes a repeated call harmless.

Parameters:
  - context: context.Context
  - memberID: string

Returns:
  - error: Storage failures
*/
func (service *Service) ProvisionDefaults(context context.Context, memberID string) error {
	if err := service.preferences.Upsert(context, defaultPreferences(memberID)); err != nil {
		return fmt.Errorf("account_service_provision_failed: %w", err)
	}
	return nil
}

/*
ContentPreferences resolves the content-filter slice of a member's reading
preferences for catalog personalization.

Description: The taxonomy handler consumes this to shape the catalog a
signed-in member sees. Storage failures degrade to the default filter rather
than failing the catalog read.

Parameters:
  - context: context.Context
  - memberID: string

Returns:
  - hideSensitive: bool
  - mutedTagIDs: []string
  - maxHeatLevel: string (heat-level tag slug, empty for no cap)
*/
func (service *Service) ContentPreferences(context context.Context, memberID string) (hideSensitive bool, mutedTagIDs []string, maxHeatLevel string) {
	prefs, err := service.GetPreferences(context, memberID)
	if err != nil {
		service.logger.Warn("member_preference_load_failed",
			slog.String("member_id", memberID),
			slog.Any("error", err),
		)
		return true, nil, ""
	}
	return prefs.HideSensitive, prefs.MutedTagIDs, prefs.MaxHeatLevel
}

// # Session Security

/*
ListSessions lists every active device session for a member.

Parameters:
  - context: context.Context
  - memberID: string
  - currentTokenHash: string (Optional identifying hash of the current session)

Returns:
  - []SessionInfo: List of active devices
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, memberID, currentTokenHash string) ([]SessionInfo, error) {
	sessions, err := service.sessions.FindActiveByUserID(context, memberID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}
	return sessions, nil
}

/*
RevokeSession terminates a specific member session by its ID.

Parameters:
  - context: context.Context
  - memberID: string
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeSession(context context.Context, memberID, sessionID string) error {
	if err := service.sessions.Revoke(context, memberID, sessionID); err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}

	service.logger.Info("member_session_revoked",
		slog.String("member_id", memberID),
		slog.String("session_id", sessionID),
	)

	return nil
}

/*
RevokeOtherSessions terminates all sessions except the current one.

Parameters:
  - context: context.Context
  - memberID: string
  - currentSessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) RevokeOtherSessions(context context.Context, memberID, currentSessionID string) error {
	if err := service.sessions.RevokeOthers(context, memberID, currentSessionID); err != nil {
		return fmt.Errorf("account_service_revoke_others_failed: %w", err)
	}

	service.logger.Info("member_other_sessions_revoked", slog.String("member_id", memberID))

	return nil
}
