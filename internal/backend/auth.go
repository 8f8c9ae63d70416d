// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Backend auth routes, relative to the base URL.
const (
	PathLogin          = "/auth/login"
	PathRefresh        = "/auth/refresh"
	PathLogout         = "/auth/logout"
	PathLogoutAll      = "/auth/logout-all"
	PathChangePassword = "/auth/change-password"
	PathMe             = "/auth/me"
	PathValidate       = "/auth/validate"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Login calls POST /auth/login. It uses the plain client, so a 401 here means
// the credentials were rejected and never triggers a refresh.
func (h *HTTP) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	resp, err := h.public.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post(PathLogin)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, errors.New("login response is missing tokens")
	}
	return &out, nil
}

// RefreshToken calls POST /auth/refresh.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	resp, err := h.public.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&out).
		SetError(&errorBody{}).
		Post(PathRefresh)
	if err != nil {
		return nil, fmt.Errorf("refresh request: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	if out.AccessToken == "" {
		return nil, errors.New("refresh response is missing access_token")
	}
	return &out, nil
}

// Logout calls DELETE /auth/logout with the refresh token in the body. The
// access token, when known, is sent as is; an expired one does not matter
// because the refresh token identifies the session.
func (h *HTTP) Logout(ctx context.Context, refreshToken, accessToken string) error {
	req := h.public.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetError(&errorBody{})
	if accessToken != "" {
		req.SetAuthToken(accessToken)
	}
	resp, err := req.Delete(PathLogout)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	return nil
}

// LogoutAll calls POST /auth/logout-all.
func (h *HTTP) LogoutAll(ctx context.Context) error {
	return h.authedMessage(h.authed.R().SetContext(ctx), http.MethodPost, PathLogoutAll)
}

// ChangePassword calls POST /auth/change-password.
func (h *HTTP) ChangePassword(ctx context.Context, current, next string) error {
	req := h.authed.R().
		SetContext(ctx).
		SetBody(map[string]string{"current_password": current, "new_password": next})
	return h.authedMessage(req, http.MethodPost, PathChangePassword)
}

func (h *HTTP) authedMessage(req *resty.Request, method, path string) error {
	var out messageResponse
	resp, err := req.SetResult(&out).SetError(&errorBody{}).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	if out.Message != "" {
		h.log.Debug("backend message", h.log.Args("path", path, "message", out.Message))
	}
	return nil
}

// Validate calls GET /auth/validate.
func (h *HTTP) Validate(ctx context.Context) (*ValidateResponse, error) {
	var out ValidateResponse
	resp, err := h.authed.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(PathValidate)
	if err != nil {
		return nil, fmt.Errorf("validate request: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return &out, nil
}
