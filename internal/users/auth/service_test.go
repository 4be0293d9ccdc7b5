// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/sec"
)

// fakeMemberRepo is an in-memory [MemberRepository].
type fakeMemberRepo struct {
	members   map[string]*Member // by ID
	createErr error
	created   []*Member
	passwords map[string]string // memberID -> new hash
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members:   make(map[string]*Member),
		passwords: make(map[string]string),
	}
}

func (fake *fakeMemberRepo) Create(_ context.Context, member *Member) error {
	if fake.createErr != nil {
		return fake.createErr
	}
	fake.created = append(fake.created, member)
	fake.members[member.ID] = member
	return nil
}

func (fake *fakeMemberRepo) FindByID(_ context.Context, id string) (*Member, error) {
	member, ok := fake.members[id]
	if !ok {
		return nil, apperr.NotFound("Member")
	}
	return member, nil
}

func (fake *fakeMemberRepo) FindByLogin(_ context.Context, login string) (*Member, error) {
	for _, member := range fake.members {
		if member.Username == login || member.Email == login {
			return member, nil
		}
	}
	return nil, apperr.NotFound("Member")
}

func (fake *fakeMemberRepo) UpdatePassword(_ context.Context, memberID, newHash string) error {
	fake.passwords[memberID] = newHash
	return nil
}

// fakeSessionRepo is an in-memory [SessionRepository].
type fakeSessionRepo struct {
	byTokenHash  map[string]*Session
	revoked      []string
	revokeOthers [][2]string // memberID, keptSessionID
	revokeAll    []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byTokenHash: make(map[string]*Session)}
}

func (fake *fakeSessionRepo) Create(_ context.Context, session *Session) error {
	fake.byTokenHash[session.TokenHash] = session
	return nil
}

func (fake *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	session, ok := fake.byTokenHash[tokenHash]
	if !ok || session.IsRevoked {
		return nil, apperr.NotFound("Session not found or expired")
	}
	return session, nil
}

func (fake *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	fake.revoked = append(fake.revoked, sessionID)
	for _, session := range fake.byTokenHash {
		if session.ID == sessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (fake *fakeSessionRepo) RevokeOthers(_ context.Context, memberID, currentSessionID string) error {
	fake.revokeOthers = append(fake.revokeOthers, [2]string{memberID, currentSessionID})
	return nil
}

func (fake *fakeSessionRepo) RevokeAll(_ context.Context, memberID string) error {
	fake.revokeAll = append(fake.revokeAll, memberID)
	return nil
}

func (fake *fakeSessionRepo) DeleteExpired(context.Context) error { return nil }

// fakeProvisioner records enrollment side effects.
type fakeProvisioner struct {
	provisioned []string
	err         error
}

func (fake *fakeProvisioner) ProvisionDefaults(_ context.Context, memberID string) error {
	fake.provisioned = append(fake.provisioned, memberID)
	return fake.err
}

// fakeTokenProvider issues predictable access tokens.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(memberID, _, _ string, _ time.Duration) (string, error) {
	return "access-" + memberID, nil
}

func newTestService(members *fakeMemberRepo, sessions *fakeSessionRepo, provisioner *fakeProvisioner) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(members, sessions, provisioner, fakeTokenProvider{}, logger)
}

func seedMember(t *testing.T, members *fakeMemberRepo, password string) *Member {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	member := &Member{
		ID:           "member-1",
		Username:     "ember-reader",
		Email:        "reader@example.com",
		PasswordHash: hash,
		Role:         sec.RoleMember,
	}
	members.members[member.ID] = member
	return member
}

/*
TestEnroll covers the happy path: the stored member carries a hash rather
than the raw password, starts as a reader, and gets default reading
preferences provisioned.
*/
func TestEnroll(t *testing.T) {
	members := newFakeMemberRepo()
	provisioner := &fakeProvisioner{}
	service := newTestService(members, newFakeSessionRepo(), provisioner)

	member, err := service.Enroll(context.Background(), EnrollInput{
		Username:    "ember-reader",
		Email:       "reader@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "Ember Reader",
	})

	require.NoError(t, err)
	require.Len(t, members.created, 1)
	assert.Equal(t, sec.RoleMember, member.Role)
	assert.NotEqual(t, "correct-horse-battery", member.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct-horse-battery", member.PasswordHash))
	assert.Equal(t, []string{member.ID}, provisioner.provisioned)
}

func TestEnroll_DuplicateIdentityConflicts(t *testing.T) {
	members := newFakeMemberRepo()
	members.createErr = apperr.Conflict("Username is already taken")
	provisioner := &fakeProvisioner{}
	service := newTestService(members, newFakeSessionRepo(), provisioner)

	_, err := service.Enroll(context.Background(), EnrollInput{
		Username: "ember-reader",
		Email:    "reader@example.com",
		Password: "correct-horse-battery",
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
	assert.Empty(t, provisioner.provisioned, "no provisioning for a failed enrollment")
}

func TestEnroll_ProvisionFailureIsNonFatal(t *testing.T) {
	members := newFakeMemberRepo()
	provisioner := &fakeProvisioner{err: assert.AnError}
	service := newTestService(members, newFakeSessionRepo(), provisioner)

	member, err := service.Enroll(context.Background(), EnrollInput{
		Username: "ember-reader",
		Email:    "reader@example.com",
		Password: "correct-horse-battery",
	})

	require.NoError(t, err, "preferences fall back to defaults on read")
	require.NotNil(t, member)
}

/*
TestSignIn asserts credential checks and that a grant opens a tracked session
whose stored hash matches the issued refresh token.
*/
func TestSignIn(t *testing.T) {
	members := newFakeMemberRepo()
	sessions := newFakeSessionRepo()
	member := seedMember(t, members, "correct-horse-battery")
	service := newTestService(members, sessions, &fakeProvisioner{})

	t.Run("wrong_password_unauthorized", func(t *testing.T) {
		_, err := service.SignIn(context.Background(), SignInInput{
			Login:    member.Username,
			Password: "wrong",
		})
		require.Error(t, err)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("valid_credentials_issue_grant", func(t *testing.T) {
		grant, err := service.SignIn(context.Background(), SignInInput{
			Login:     member.Email,
			Password:  "correct-horse-battery",
			UserAgent: "test-agent",
		})
		require.NoError(t, err)
		assert.Equal(t, "access-member-1", grant.AccessToken)
		assert.NotEmpty(t, grant.RefreshToken)

		stored, ok := sessions.byTokenHash[sec.HashToken(grant.RefreshToken)]
		require.True(t, ok, "the session row stores the token hash, never the token")
		assert.Equal(t, member.ID, stored.MemberID)
		assert.Equal(t, "test-agent", stored.UserAgent)
	})
}

/*
TestRefresh_RotatesSession asserts the rotation contract: the presented
token's session is revoked, a new session is opened, and a replay of the old
token is rejected.
*/
func TestRefresh_RotatesSession(t *testing.T) {
	members := newFakeMemberRepo()
	sessions := newFakeSessionRepo()
	member := seedMember(t, members, "correct-horse-battery")
	service := newTestService(members, sessions, &fakeProvisioner{})

	first, err := service.SignIn(context.Background(), SignInInput{
		Login:    member.Username,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	firstSession := sessions.byTokenHash[sec.HashToken(first.RefreshToken)]

	rotated, err := service.Refresh(context.Background(), first.RefreshToken, "agent", "ip")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
	assert.Contains(t, sessions.revoked, firstSession.ID)

	_, err = service.Refresh(context.Background(), first.RefreshToken, "agent", "ip")
	require.Error(t, err, "a rotated token must not refresh twice")
}

func TestSignOut_Idempotent(t *testing.T) {
	service := newTestService(newFakeMemberRepo(), newFakeSessionRepo(), &fakeProvisioner{})
	assert.NoError(t, service.SignOut(context.Background(), "unknown-token"))
}

/*
TestChangePassword asserts the current password is verified, the new hash is
stored, and every other device session is revoked.
*/
func TestChangePassword(t *testing.T) {
	members := newFakeMemberRepo()
	sessions := newFakeSessionRepo()
	member := seedMember(t, members, "old-password-123")
	service := newTestService(members, sessions, &fakeProvisioner{})

	grant, err := service.SignIn(context.Background(), SignInInput{
		Login:    member.Username,
		Password: "old-password-123",
	})
	require.NoError(t, err)
	currentSession := sessions.byTokenHash[sec.HashToken(grant.RefreshToken)]

	t.Run("wrong_current_password", func(t *testing.T) {
		err := service.ChangePassword(context.Background(), member.ID, "not-it", "new-password-456", grant.RefreshToken)
		require.Error(t, err)
		assert.Empty(t, members.passwords)
	})

	t.Run("rotates_hash_and_revokes_others", func(t *testing.T) {
		err := service.ChangePassword(context.Background(), member.ID, "old-password-123", "new-password-456", grant.RefreshToken)
		require.NoError(t, err)

		newHash, ok := members.passwords[member.ID]
		require.True(t, ok)
		assert.True(t, sec.CheckPasswordHash("new-password-456", newHash))

		require.Len(t, sessions.revokeOthers, 1)
		assert.Equal(t, [2]string{member.ID, currentSession.ID}, sessions.revokeOthers[0])
	})
}
