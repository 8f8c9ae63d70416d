// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/session"
)

func fullSession() session.Session {
	return session.Session{
		User: &session.UserProfile{
			ID:        "1",
			Email:     "demo@example.com",
			FirstName: "Demo",
			LastName:  "User",
			IsActive:  true,
			Role: &session.Role{
				ID:          "r1",
				Name:        "admin",
				Permissions: []session.Permission{{ID: "p1", Name: "All", Code: "admin.all"}},
			},
			CreatedAt: "2025-01-01T10:00:00",
		},
		AccessToken:     "t1",
		RefreshToken:    "r1",
		IsAuthenticated: true,
	}
}

func stored(t *testing.T, ring keyring.Keyring, key string) (string, bool) {
	t.Helper()
	it, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return string(it.Data), true
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	m := NewManager(ring, nil)

	s := fullSession()
	require.NoError(t, m.Save(s))

	v, ok := stored(t, ring, KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, "t1", v)

	assert.Equal(t, s, m.Restore())
}

func TestSaveRemovesAbsentFields(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	m := NewManager(ring, nil)
	require.NoError(t, m.Save(fullSession()))

	partial := fullSession()
	partial.User = nil
	partial.RefreshToken = ""
	require.NoError(t, m.Save(partial))

	_, ok := stored(t, ring, KeyUserData)
	assert.False(t, ok)
	_, ok = stored(t, ring, KeyRefreshToken)
	assert.False(t, ok)
	v, ok := stored(t, ring, KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "t1", v)

	assert.Equal(t, session.Session{}, m.Restore())
}

func TestRestoreFailsOpen(t *testing.T) {
	tests := []struct {
		name  string
		items []keyring.Item
	}{
		{name: "empty storage"},
		{
			name: "corrupt user json",
			items: []keyring.Item{
				{Key: KeyAccessToken, Data: []byte("t1")},
				{Key: KeyRefreshToken, Data: []byte("r1")},
				{Key: KeyUserData, Data: []byte("{not json")},
			},
		},
		{
			name: "user without id",
			items: []keyring.Item{
				{Key: KeyAccessToken, Data: []byte("t1")},
				{Key: KeyRefreshToken, Data: []byte("r1")},
				{Key: KeyUserData, Data: []byte(`{}`)},
			},
		},
		{
			name: "missing refresh token",
			items: []keyring.Item{
				{Key: KeyAccessToken, Data: []byte("t1")},
				{Key: KeyUserData, Data: []byte(`{"id":"1"}`)},
			},
		},
		{
			name: "empty access token value",
			items: []keyring.Item{
				{Key: KeyAccessToken, Data: []byte("")},
				{Key: KeyRefreshToken, Data: []byte("r1")},
				{Key: KeyUserData, Data: []byte(`{"id":"1"}`)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(keyring.NewArrayKeyring(tt.items), nil)
			assert.Equal(t, session.Session{}, m.Restore())
		})
	}
}

// brokenRing fails every operation.
type brokenRing struct{}

var errBroken = errors.New("keychain locked")

func (brokenRing) Get(string) (keyring.Item, error) { return keyring.Item{}, errBroken }
func (brokenRing) GetMetadata(string) (keyring.Metadata, error) {
	return keyring.Metadata{}, errBroken
}
func (brokenRing) Set(keyring.Item) error  { return errBroken }
func (brokenRing) Remove(string) error     { return errBroken }
func (brokenRing) Keys() ([]string, error) { return nil, errBroken }

func TestStorageErrors(t *testing.T) {
	m := NewManager(brokenRing{}, nil)

	assert.Equal(t, session.Session{}, m.Restore())

	err := m.Save(fullSession())
	require.Error(t, err)
	assert.Equal(t, apperrors.Storage, apperrors.KindOf(err))
	assert.ErrorIs(t, err, errBroken)

	err = m.ClearAll()
	assert.Equal(t, apperrors.Storage, apperrors.KindOf(err))
}

func TestClearAllIsIdempotent(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	m := NewManager(ring, nil)
	require.NoError(t, m.Save(fullSession()))

	require.NoError(t, m.ClearAll())
	require.NoError(t, m.ClearAll())

	keys, err := ring.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOpenBackends(t *testing.T) {
	ring, closeFn, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, ring.Set(keyring.Item{Key: "k", Data: []byte("v")}))

	_, _, err = Open(context.Background(), Options{Backend: "floppy"})
	assert.Error(t, err)

	_, _, err = Open(context.Background(), Options{Backend: BackendPostgres})
	assert.Error(t, err)
}

func TestAllowedBackendsEndWithFile(t *testing.T) {
	for _, goos := range []string{"darwin", "windows", "linux", "freebsd"} {
		t.Run(goos, func(t *testing.T) {
			b := allowedBackends(goos)
			require.NotEmpty(t, b)
			assert.Equal(t, keyring.FileBackend, b[len(b)-1])
		})
	}
}
