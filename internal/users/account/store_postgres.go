// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package account (Postgres) implements the storage layer for user meta-data.

It provides PostgreSQL implementations for managing user profiles, content
preferences, and auditing active sessions.

# Schema Table Mapping
  - users.account: Master identity and profile data.
  - users.readingpreference: 1:1 user settings configuration.
  - users.session: Active device sessions and security metadata.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/users/auth"
)

// # Repository Implementations

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new Postgres implementation for profile management.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// PostgresPreferencesRepository implements [PreferencesRepository] using pgx.
type PostgresPreferencesRepository struct {
	pool *pgxpool.Pool
}

// NewPreferencesRepository creates a new Postgres implementation for user settings.
func NewPreferencesRepository(pool *pgxpool.Pool) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{pool: pool}
}

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new Postgres implementation for session auditing.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// # AccountRepository Methods

/*
FindByID retrieves a member record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.Member: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.Member, error) {
	const query = `
		SELECT id, username, email, passwordhash, displayname, avatarurl, bio, role, createdat, updatedat
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`

	member := &auth.Member{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&member.ID,
		&member.Username,
		&member.Email,
		&member.PasswordHash,
		&member.DisplayName,
		&member.AvatarURL,
		&member.Bio,
		&member.Role,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return member, nil
}

/*
Update modifies the mutable profile metadata of a member.

Description: This method specifically syncs the DisplayName, AvatarURL, and
Bio fields, while refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - member: *auth.Member

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, member *auth.Member) error {
	const query = `
		UPDATE users.account
		SET displayname = $2, avatarurl = $3, bio = $4, updatedat = $5
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query,
		member.ID,
		member.DisplayName,
		member.AvatarURL,
		member.Bio,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

/*
SoftDelete flags a user account as logically destroyed.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresAccountRepository) SoftDelete(context context.Context, id string) error {
	const query = "UPDATE users.account SET deletedat = NOW() WHERE id = $1 AND deletedat IS NULL"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_soft_delete_failed: %w", err)
	}
	return nil
}

// # PreferencesRepository Methods

/*
FindByUserID retrieves the saved content preferences for a specific user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Preferences: Hydrated setting entity
  - error: apperr.NotFound or retrieval failures
*/
func (repository *PostgresPreferencesRepository) FindByUserID(context context.Context, userID string) (*Preferences, error) {
	const query = `
		SELECT userid, hidesensitive, mutedtagids, maxheatlevel, emaildigest, updatedat
		FROM users.readingpreference
		WHERE userid = $1`

	prefs := &Preferences{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&prefs.UserID,
		&prefs.HideSensitive,
		&prefs.MutedTagIDs,
		&prefs.MaxHeatLevel,
		&prefs.EmailDigest,
		&prefs.UpdatedAt,
	)

	// If the query fails, return an error
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Preferences")
		}
		return nil, fmt.Errorf("postgres_preference_repo_find_failed: %w", err)
	}

	return prefs, nil
}

/*
Upsert saves a user's preferences using an ON CONFLICT UPDATE strategy.

Parameters:
  - context: context.Context
  - prefs: *Preferences

Returns:
  - error: Synchronization failures
*/
func (repository *PostgresPreferencesRepository) Upsert(context context.Context, prefs *Preferences) error {
	const query = `
		INSERT INTO users.readingpreference (
			userid, hidesensitive, mutedtagids, maxheatlevel, emaildigest, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (userid) DO UPDATE SET
			hidesensitive = EXCLUDED.hidesensitive,
			mutedtagids = EXCLUDED.mutedtagids,
			maxheatlevel = EXCLUDED.maxheatlevel,
			emaildigest = EXCLUDED.emaildigest,
			updatedat = EXCLUDED.updatedat`

	prefs.UpdatedAt = time.Now()

	_, err := repository.pool.Exec(context, query,
		prefs.UserID,
		prefs.HideSensitive,
		prefs.MutedTagIDs,
		prefs.MaxHeatLevel,
		prefs.EmailDigest,
		prefs.UpdatedAt,
	)

	// If the upsert fails, return an error
	if err != nil {
		return fmt.Errorf("postgres_preference_repo_upsert_failed: %w", err)
	}

	return nil
}

// # SessionRepository Methods

/*
FindActiveByUserID retrieves all valid device sessions for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionInfo: Collection of active devices
  - error: Database retrieval failures
*/
func (repository *PostgresSessionRepository) FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error) {
	const query = `
		SELECT id, useragent, ipaddress, createdat, expiresat
		FROM users.session
		WHERE userid = $1 AND isrevoked = FALSE AND expiresat > NOW()
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_active_failed: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.UserAgent, &info.IPAddress, &info.CreatedAt, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_active_failed: %w", err)
	}

	return sessions, nil
}

/*
Revoke marks a single session as permanently revoked.

Parameters:
  - context: context.Context
  - userID: string (Security: validation of ownership)
  - sessionID: string

Returns:
  - error: Update failures
*/
func (repository *PostgresSessionRepository) Revoke(context context.Context, userID, sessionID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE id = $1 AND userid = $2"
	_, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeOthers marks all sessions except the current one as revoked.

Parameters:
  - context: context.Context
  - userID: string
  - currentSessionID: string

Returns:
  - error: Batch update failures
*/
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, currentSessionID string) error {
	const query = `
		UPDATE users.session
		SET isrevoked = TRUE
		WHERE userid = $1 AND id != $2 AND isrevoked = FALSE`
	_, err := repository.pool.Exec(context, query, userID, currentSessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_others_failed: %w", err)
	}
	return nil
}

/*
RevokeAll terminates every session for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch update failures
*/
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE userid = $1 AND isrevoked = FALSE"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}
