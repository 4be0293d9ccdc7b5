// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package account

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/users/auth"
)

type fakeAccountRepo struct {
	members map[string]*auth.Member
}

func (fake *fakeAccountRepo) FindByID(_ context.Context, id string) (*auth.Member, error) {
	member, ok := fake.members[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return member, nil
}
func (fake *fakeAccountRepo) Update(context.Context, *auth.Member) error { return nil }
func (fake *fakeAccountRepo) SoftDelete(context.Context, string) error   { return nil }

type fakePreferencesRepo struct {
	stored   map[string]*Preferences
	upserted []*Preferences
}

func (fake *fakePreferencesRepo) FindByUserID(_ context.Context, userID string) (*Preferences, error) {
	prefs, ok := fake.stored[userID]
	if !ok {
		return nil, apperr.NotFound("Preferences")
	}
	return prefs, nil
}

func (fake *fakePreferencesRepo) Upsert(_ context.Context, prefs *Preferences) error {
	fake.upserted = append(fake.upserted, prefs)
	return nil
}

type fakeSessionRepo struct{}

func (fakeSessionRepo) FindActiveByUserID(context.Context, string) ([]SessionInfo, error) {
	return nil, nil
}
func (fakeSessionRepo) Revoke(context.Context, string, string) error       { return nil }
func (fakeSessionRepo) RevokeOthers(context.Context, string, string) error { return nil }
func (fakeSessionRepo) RevokeAll(context.Context, string) error            { return nil }

func newTestService(prefs *fakePreferencesRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(&fakeAccountRepo{members: map[string]*auth.Member{}}, prefs, fakeSessionRepo{}, logger)
}

/*
TestGetPreferences_DefaultsWhenUnset asserts that a member who never saved
preferences still reads the default content filter: sensitive hidden, no
mutes, no heat cap.
*/
func TestGetPreferences_DefaultsWhenUnset(t *testing.T) {
	service := newTestService(&fakePreferencesRepo{stored: map[string]*Preferences{}})

	prefs, err := service.GetPreferences(context.Background(), "member-1")

	require.NoError(t, err)
	assert.True(t, prefs.HideSensitive)
	assert.Empty(t, prefs.MutedTagIDs)
	assert.Empty(t, prefs.MaxHeatLevel)
}

/*
TestContentPreferences covers the catalog personalization source: stored
values come back as stored, and a missing row degrades to the default filter.
*/
func TestContentPreferences(t *testing.T) {
	repo := &fakePreferencesRepo{stored: map[string]*Preferences{
		"member-1": {
			UserID:        "member-1",
			HideSensitive: false,
			MutedTagIDs:   []string{"tag-9"},
			MaxHeatLevel:  "open-door",
		},
	}}
	service := newTestService(repo)

	t.Run("stored_values", func(t *testing.T) {
		hideSensitive, muted, maxHeat := service.ContentPreferences(context.Background(), "member-1")
		assert.False(t, hideSensitive)
		assert.Equal(t, []string{"tag-9"}, muted)
		assert.Equal(t, "open-door", maxHeat)
	})

	t.Run("unset_member_gets_defaults", func(t *testing.T) {
		hideSensitive, muted, maxHeat := service.ContentPreferences(context.Background(), "member-2")
		assert.True(t, hideSensitive)
		assert.Empty(t, muted)
		assert.Empty(t, maxHeat)
	})
}

func TestProvisionDefaults(t *testing.T) {
	repo := &fakePreferencesRepo{stored: map[string]*Preferences{}}
	service := newTestService(repo)

	require.NoError(t, service.ProvisionDefaults(context.Background(), "member-1"))

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "member-1", repo.upserted[0].UserID)
	assert.True(t, repo.upserted[0].HideSensitive)
}
