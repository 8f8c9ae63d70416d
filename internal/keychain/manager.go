// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain mirrors the session to durable secret storage so a new CLI
// process can restore it without logging in again.
//
// Manager is the persistence bridge. It stores the access token, the refresh
// token and the JSON-encoded user profile under fixed keys in any
// keyring.Keyring: the OS keychain/credential store, an in-memory ring, or the
// Postgres table provided by internal/pgstore.
package keychain

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"

	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "cvflow"

// Keys used for storing the session.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData}

// Manager is the persistence bridge between the session store and a keyring.
// This type is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	ring keyring.Keyring
	log  *pterm.Logger
}

// NewManager wraps ring. A nil logger discards output.
func NewManager(ring keyring.Keyring, log *pterm.Logger) *Manager {
	return &Manager{ring: ring, log: logging.OrDiscard(log)}
}

// Save writes every present session field and removes the entries of absent ones.
func (m *Manager) Save(s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	errs = append(errs, m.put(KeyAccessToken, []byte(s.AccessToken)))
	errs = append(errs, m.put(KeyRefreshToken, []byte(s.RefreshToken)))

	if s.User != nil {
		b, err := json.Marshal(s.User)
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, m.put(KeyUserData, b))
		}
	} else {
		errs = append(errs, m.remove(KeyUserData))
	}

	if err := errors.Join(errs...); err != nil {
		return apperrors.Wrap(apperrors.Storage, "could not persist session", err)
	}
	return nil
}

// put stores data under key, or removes the key when data is empty.
func (m *Manager) put(key string, data []byte) error {
	if len(data) == 0 {
		return m.remove(key)
	}
	return m.ring.Set(keyring.Item{
		Key:         key,
		Data:        data,
		Label:       ServiceName + " " + strings.ReplaceAll(key, "_", " "),
		Description: "CVFlow CLI session",
	})
}

func (m *Manager) remove(key string) error {
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Restore rebuilds the persisted session. Missing keys, unreadable storage or
// a corrupt user record all yield the empty Session; Restore never fails.
func (m *Manager) Restore() session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make(map[string][]byte, len(sessionKeys))
	for _, key := range sessionKeys {
		it, err := m.ring.Get(key)
		if err != nil {
			if !errors.Is(err, keyring.ErrKeyNotFound) {
				m.log.Debug("session storage read failed", m.log.Args("key", key, "error", logging.Mask(err.Error())))
			}
			return session.Session{}
		}
		if len(it.Data) == 0 {
			return session.Session{}
		}
		values[key] = it.Data
	}

	var user session.UserProfile
	if err := json.Unmarshal(values[KeyUserData], &user); err != nil || user.ID == "" {
		m.log.Debug("ignoring corrupt stored user profile")
		return session.Session{}
	}

	return session.Session{
		User:            &user,
		AccessToken:     string(values[KeyAccessToken]),
		RefreshToken:    string(values[KeyRefreshToken]),
		IsAuthenticated: true,
	}
}

// ClearAll removes all session keys. Keys that are already absent are ignored.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, key := range sessionKeys {
		errs = append(errs, m.remove(key))
	}
	if err := errors.Join(errs...); err != nil {
		return apperrors.Wrap(apperrors.Storage, "could not clear stored session", err)
	}
	return nil
}
