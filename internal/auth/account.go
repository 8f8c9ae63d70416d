// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"net/http"

	"cvflow/cli/internal/backend"
	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/session"
)

var errNotLoggedIn = apperrors.New(apperrors.Authorization, "not logged in, run `cvflow login` first")

// ChangePassword changes the current user's password. The token pair stays
// valid.
func (s *Service) ChangePassword(ctx context.Context, current, next string) Result {
	if !s.store.State().IsAuthenticated {
		return failed(errNotLoggedIn)
	}
	if current == "" {
		return failed(apperrors.New(apperrors.Validation, "current password is required"))
	}
	if err := validatePassword(next); err != nil {
		return failed(err)
	}
	if current == next {
		return failed(apperrors.New(apperrors.Validation, "new password must differ from the current one"))
	}

	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	if err := s.be.ChangePassword(ctx, current, next); err != nil {
		err = classifyCall(err, "change password")
		s.store.SetError(apperrors.Message(err))
		return failed(err)
	}
	return ok()
}

// RefreshProfile fetches the profile, stores it and returns a copy.
func (s *Service) RefreshProfile(ctx context.Context) (*session.UserProfile, error) {
	if !s.store.State().IsAuthenticated {
		return nil, errNotLoggedIn
	}
	u, err := s.be.GetMe(ctx)
	if err != nil {
		return nil, classifyCall(err, "load profile")
	}
	s.store.SetUser(u)
	s.persist()
	return u.Clone(), nil
}

// Validate asks the server whether it accepts the current session. A
// rejected session is reported as false without an error.
func (s *Service) Validate(ctx context.Context) (bool, error) {
	if !s.store.State().IsAuthenticated {
		return false, nil
	}
	v, err := s.be.Validate(ctx)
	if backend.StatusCode(err) == http.StatusUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, classifyCall(err, "validate session")
	}
	return v.Valid, nil
}
