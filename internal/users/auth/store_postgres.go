// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/dberr"
)

// Unique indexes on users.account that enrollment can trip over. The names
// match data/migrations and let Create report which identity collided.
const (
	constraintAccountUsername = "account_username_unique"
	constraintAccountEmail    = "account_email_unique"
)

// memberColumns is the scan list shared by every member lookup.
const memberColumns = "id, username, email, passwordhash, displayname, avatarurl, bio, role, createdat, updatedat"

// # Member Repository

// PostgresMemberRepository implements [MemberRepository] using pgx.
type PostgresMemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates the PostgreSQL implementation of [MemberRepository].
func NewMemberRepository(pool *pgxpool.Pool) *PostgresMemberRepository {
	return &PostgresMemberRepository{pool: pool}
}

/*
Create inserts a new row into users.account.

Description: Collisions with the case-insensitive username/email unique
indexes are translated to client-safe conflicts here, so the service layer
never needs a pre-insert existence check.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: apperr.Conflict on duplicate identity, or execution errors
*/
func (repository *PostgresMemberRepository) Create(context context.Context, member *Member) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, displayname, avatarurl, bio, role, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		member.ID,
		member.Username,
		member.Email,
		member.PasswordHash,
		member.DisplayName,
		member.AvatarURL,
		member.Bio,
		member.Role,
		member.CreatedAt,
		member.UpdatedAt,
	)

	switch dberr.UniqueConstraint(err) {
	case constraintAccountUsername:
		return apperr.Conflict("Username is already taken")
	case constraintAccountEmail:
		return apperr.Conflict("Email is already registered")
	}
	if err != nil {
		return fmt.Errorf("postgres_member_repo_create_failed: %w", err)
	}
	return nil
}

/*
FindByLogin resolves a sign-in handle against username or email.

Description: Both columns are matched case-insensitively, mirroring the
LOWER() unique indexes, so "Reader@Example.com" signs in the same account
it enrolled.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - *Member: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresMemberRepository) FindByLogin(context context.Context, login string) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		WHERE (LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)) AND deletedat IS NULL`,
		memberColumns,
	)

	return repository.scanMember(repository.pool.QueryRow(context, query, login), "find_by_login")
}

/*
FindByID retrieves a member by primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Member: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresMemberRepository) FindByID(context context.Context, id string) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users.account
		WHERE id = $1 AND deletedat IS NULL`,
		memberColumns,
	)

	return repository.scanMember(repository.pool.QueryRow(context, query, id), "find_by_id")
}

/*
UpdatePassword replaces only the password hash for a member.

Parameters:
  - context: context.Context
  - memberID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresMemberRepository) UpdatePassword(context context.Context, memberID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(context, query, memberID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_member_repo_update_password_failed: %w", err)
	}
	return nil
}

// scanMember hydrates one member row, mapping pgx.ErrNoRows to NotFound.
func (repository *PostgresMemberRepository) scanMember(row pgx.Row, action string) (*Member, error) {
	member := &Member{}
	err := row.Scan(
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
			return nil, apperr.NotFound("Member")
		}
		return nil, fmt.Errorf("postgres_member_repo_%s_failed: %w", action, err)
	}
	return member, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository].
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates the PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create inserts a tracked refresh session into users.session.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, userid, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.MemberID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}
	return nil
}

/*
FindByTokenHash retrieves the live session behind a refresh-token hash.

Description: Revoked and expired rows are filtered in the query, so a hit is
always a usable session.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, userid, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		FROM users.session
		WHERE tokenhash = $1 AND isrevoked = FALSE AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.MemberID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found or expired")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}
	return session, nil
}

// Revoke marks one session as permanently invalidated.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE id = $1"
	if _, err := repository.pool.Exec(context, query, sessionID); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

// RevokeOthers invalidates every active session of the member except the
// current one.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, memberID, currentSessionID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE userid = $1 AND id != $2 AND isrevoked = FALSE"
	if _, err := repository.pool.Exec(context, query, memberID, currentSessionID); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_others_failed: %w", err)
	}
	return nil
}

// RevokeAll invalidates every active session of the member.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, memberID string) error {
	const query = "UPDATE users.session SET isrevoked = TRUE WHERE userid = $1 AND isrevoked = FALSE"
	if _, err := repository.pool.Exec(context, query, memberID); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Run as a maintenance
// task; correctness never depends on it because reads filter on expiresat.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) error {
	const query = "DELETE FROM users.session WHERE expiresat <= NOW()"
	if _, err := repository.pool.Exec(context, query); err != nil {
		return fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return nil
}
