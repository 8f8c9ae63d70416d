// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"

	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
)

// Logout ends the session. The server is told to revoke the refresh token
// when there is one; whatever it answers, the local session is cleared.
func (s *Service) Logout(ctx context.Context) {
	st := s.store.State()
	if st.RefreshToken != "" {
		if err := s.be.Logout(ctx, st.RefreshToken, st.AccessToken); err != nil {
			s.log.Warn("server logout failed", s.log.Args("error", logging.Mask(err.Error())))
		}
	}
	s.clearLocal()
}

// LogoutAll revokes every session of the user on the server, then clears the
// local one. The server call is skipped when not logged in.
func (s *Service) LogoutAll(ctx context.Context) {
	if s.store.State().IsAuthenticated {
		if err := s.be.LogoutAll(ctx); err != nil {
			s.log.Warn("server logout-all failed", s.log.Args("error", logging.Mask(err.Error())))
		}
	}
	s.clearLocal()
}

// Refresh exchanges the stored refresh token for a new access token. It keeps
// the refresh token unless the server rotates it. Any failure expires the
// session.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	before := s.store.State()
	if before.RefreshToken == "" {
		return "", apperrors.New(apperrors.SessionExpired, "no refresh token")
	}

	resp, err := s.be.RefreshToken(ctx, before.RefreshToken)
	if err != nil {
		s.log.Debug("refresh rejected", s.log.Args("error", logging.Mask(err.Error())))
		s.expire()
		return "", apperrors.Wrap(apperrors.SessionExpired, MsgSessionExpired, err)
	}

	current := s.store.State()
	if current.RefreshToken != before.RefreshToken {
		// logged out or logged in again while the refresh was in flight
		return "", apperrors.New(apperrors.SessionExpired, "session changed during refresh")
	}
	refresh := before.RefreshToken
	if resp.RefreshToken != "" {
		refresh = resp.RefreshToken
	}
	tokens := session.TokenPair{AccessToken: resp.AccessToken, RefreshToken: refresh}
	if err := s.store.SetAuthenticated(current.User, tokens); err != nil {
		s.expire()
		return "", apperrors.Wrap(apperrors.SessionExpired, MsgSessionExpired, err)
	}
	s.be.InvalidateProfile()
	s.persist()
	s.log.Debug("access token refreshed", s.log.Args("token", logging.MaskToken(resp.AccessToken)))
	return resp.AccessToken, nil
}

func (s *Service) expire() {
	s.clearLocal()
	s.store.SetError(MsgSessionExpired)
}
