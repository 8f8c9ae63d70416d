// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the REST client for the CVFlow backend.
// It covers the authentication contracts (login, refresh, logout, password
// change, profile) and a generic call used for the remaining resources.
// Requests that need a session go through an authenticated client whose
// transport is supplied by internal/transport; the credential endpoints use a
// plain client so they never trigger a refresh.
package backend

import (
	"context"
	"net/url"

	"cvflow/cli/internal/session"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Login exchanges credentials for a token pair and the user profile.
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// RefreshToken exchanges a refresh token for a new access token.
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	// Logout invalidates refreshToken on the backend.
	Logout(ctx context.Context, refreshToken, accessToken string) error
	// LogoutAll revokes every refresh token of the current user.
	LogoutAll(ctx context.Context) error
	// ChangePassword changes the current user's password.
	ChangePassword(ctx context.Context, current, next string) error
	// GetMe retrieves the current user's profile.
	GetMe(ctx context.Context) (*session.UserProfile, error)
	// Validate asks the backend whether the current access token is accepted.
	Validate(ctx context.Context) (*ValidateResponse, error)
	// Call performs an authenticated request against any backend path.
	Call(ctx context.Context, method, path string, query url.Values, body []byte) (*RawResponse, error)
	// InvalidateProfile drops the cached profile.
	InvalidateProfile()
}

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	TokenType    string              `json:"token_type"`
	ExpiresIn    int                 `json:"expires_in"`
	User         session.UserProfile `json:"user"`
}

// RefreshResponse is the body of POST /auth/refresh. RefreshToken is only set
// when the backend rotates it.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ValidateResponse is the body of GET /auth/validate.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RawResponse is the undecoded result of Call.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
