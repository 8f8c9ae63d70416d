// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"net/mail"
	"strings"
	"unicode"

	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/session"
)

// MinPasswordLength is the backend's minimum length for a new password.
const MinPasswordLength = 8

// Login exchanges credentials for a session. On failure the current session
// is left as it was and only the store's error message is updated.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		s.store.SetError(apperrors.Message(err))
		return failed(err)
	}

	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	resp, err := s.be.Login(ctx, email, password)
	if err != nil {
		err = classifyLogin(err)
		s.log.Debug("login failed", s.log.Args("email", email, "kind", string(apperrors.KindOf(err))))
		s.store.SetError(apperrors.Message(err))
		return failed(err)
	}

	user := resp.User
	tokens := session.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := s.store.SetAuthenticated(&user, tokens); err != nil {
		err = apperrors.Wrap(apperrors.Authentication, "the server returned an incomplete session", err)
		s.store.SetError(apperrors.Message(err))
		return failed(err)
	}
	s.be.InvalidateProfile()
	s.persist()
	s.log.Debug("logged in", s.log.Args("user_id", user.ID, "role", user.RoleName()))
	return ok()
}

func validateCredentials(email, password string) error {
	if email == "" || strings.TrimSpace(password) == "" {
		return apperrors.New(apperrors.Validation, "email and password are required")
	}
	if !validEmail(email) {
		return apperrors.New(apperrors.Validation, "invalid email address")
	}
	return nil
}

// validEmail accepts a bare RFC 5322 address with a dotted domain.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// validatePassword applies the backend's rules for new passwords.
func validatePassword(p string) error {
	if len(p) < MinPasswordLength {
		return apperrors.New(apperrors.Validation, "password must be at least 8 characters long")
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter {
		return apperrors.New(apperrors.Validation, "password must contain at least one letter")
	}
	if !digit {
		return apperrors.New(apperrors.Validation, "password must contain at least one digit")
	}
	return nil
}
