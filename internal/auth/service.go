// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth provides authentication services for the CVFlow CLI.
// It exchanges credentials for a session, keeps the session store and its
// durable copy in step, and refreshes the access token on behalf of the
// transport interceptor.
package auth

import (
	"context"
	"errors"

	"github.com/pterm/pterm"

	"cvflow/cli/internal/backend"
	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
	"cvflow/cli/internal/transport"
)

// MsgSessionExpired is the store error set when a refresh fails.
const MsgSessionExpired = "session expired, please log in again"

// Persister keeps a durable copy of the session.
// keychain.Manager is the production implementation.
type Persister interface {
	Save(session.Session) error
	Restore() session.Session
	ClearAll() error
}

// Result is the outcome of a user-facing operation.
type Result struct {
	Success bool
	Error   string
	err     error
}

// Err returns the underlying error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return errors.New(r.Error)
}

func ok() Result { return Result{Success: true} }

func failed(err error) Result {
	return Result{Error: apperrors.Message(err), err: err}
}

// Service centralizes authentication-related operations against the backend
// and the local session.
type Service struct {
	be     backend.API
	store  *session.Store
	bridge Persister
	log    *pterm.Logger

	interceptor *transport.Interceptor
}

var _ transport.Refresher = (*Service)(nil)

// NewService constructs a Service. It does not touch the backend's transport;
// use Setup to get a fully wired service.
func NewService(be backend.API, store *session.Store, bridge Persister, log *pterm.Logger) *Service {
	return &Service{be: be, store: store, bridge: bridge, log: logging.OrDiscard(log)}
}

// Setup builds a Service and installs the refresh interceptor on be's
// authenticated client, so every call that needs a session carries the
// current access token and survives its expiry.
func Setup(be *backend.HTTP, store *session.Store, bridge Persister, log *pterm.Logger) *Service {
	s := NewService(be, store, bridge, log)
	s.interceptor = transport.New(store, s, be.BaseTransport(), log)
	be.SetAuthTransport(s.interceptor)
	return s
}

// Store returns the session store the service mutates.
func (s *Service) Store() *session.Store { return s.store }

// Refreshing reports whether a token refresh is in flight.
func (s *Service) Refreshing() bool {
	return s.interceptor != nil && s.interceptor.State() == transport.Refreshing
}

// Restore loads the persisted session into the store. It reports whether a
// complete session was found; anything else leaves the store logged out.
func (s *Service) Restore(context.Context) bool {
	st := s.bridge.Restore()
	if !st.IsAuthenticated {
		return false
	}
	if err := s.store.SetAuthenticated(st.User, st.Tokens()); err != nil {
		s.log.Debug("persisted session rejected", s.log.Args("error", err.Error()))
		return false
	}
	return true
}

func (s *Service) persist() {
	if err := s.bridge.Save(s.store.State()); err != nil {
		s.log.Warn("could not persist session", s.log.Args("error", logging.Mask(err.Error())))
	}
}

// clearLocal drops the session from memory, durable storage and caches.
func (s *Service) clearLocal() {
	s.store.Clear()
	if err := s.bridge.ClearAll(); err != nil {
		s.log.Warn("could not clear stored session", s.log.Args("error", err.Error()))
	}
	s.be.InvalidateProfile()
}
