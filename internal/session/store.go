// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the client-side authentication state of the CLI.
//
// A Store is the single source of truth for the current user and token pair.
// It is safe for concurrent use and has no persistence side effects; mirroring
// the state to durable storage is done by internal/keychain. Stores are plain
// values created with NewStore, so tests and commands can run independent
// sessions side by side.
package session

import (
	"errors"
	"sync"
)

// ErrIncompleteSession is returned by SetAuthenticated when the user or one of
// the tokens is missing.
var ErrIncompleteSession = errors.New("session requires a user, an access token and a refresh token")

// TokenPair is the short-lived access token and the long-lived refresh token
// issued by the backend.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is a snapshot of the authentication state.
// IsAuthenticated is derived: true iff User and both tokens are present.
type Session struct {
	User            *UserProfile
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Tokens returns the token pair held by the snapshot.
func (s Session) Tokens() TokenPair {
	return TokenPair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

func (s *Session) derive() {
	s.IsAuthenticated = s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Store owns the current Session. The zero value is not usable; use NewStore.
type Store struct {
	mu    sync.RWMutex
	state Session
}

// NewStore returns a Store holding the empty Session.
func NewStore() *Store {
	return &Store{}
}

// State returns a read-only snapshot. The user profile is deep-copied.
func (s *Store) State() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.User = s.state.User.Clone()
	return out
}

// SetAuthenticated moves the store to the authenticated state and clears any
// error. The state is left untouched when the input is incomplete.
func (s *Store) SetAuthenticated(user *UserProfile, tokens TokenPair) error {
	if user == nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return ErrIncompleteSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Session{
		User:         user.Clone(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Loading:      s.state.Loading,
	}
	s.state.derive()
	return nil
}

// Clear resets the store to the empty Session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Session{}
}

// SetUser replaces the user without touching the tokens.
func (s *Store) SetUser(user *UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = user.Clone()
	s.state.derive()
}

// SetLoading toggles the in-progress flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
}

// SetError records a user-facing message; empty clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}
