// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"cvflow/cli/internal/backend"
	apperrors "cvflow/cli/internal/errors"
)

const msgUnreachable = "could not reach the CVFlow server"

func serverMessage(err error, fallback string) string {
	if m := backend.ErrorMessage(err); m != "" {
		return m
	}
	return fallback
}

// transportFailure reports whether err never produced an HTTP response.
func transportFailure(err error) bool {
	var ue *url.Error
	var ne net.Error
	return errors.As(err, &ue) || errors.As(err, &ne) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func classifyStatusless(err error) error {
	if transportFailure(err) {
		return apperrors.Wrap(apperrors.Network, msgUnreachable, err)
	}
	return apperrors.Wrap(apperrors.Network, "unexpected response from the CVFlow server", err)
}

func classifyServer(code int, err error) error {
	return apperrors.Wrap(apperrors.Network,
		fmt.Sprintf("the CVFlow server failed to handle the request (%d)", code), err)
}

// classifyLogin maps a login failure to a typed error.
func classifyLogin(err error) error {
	code := backend.StatusCode(err)
	switch {
	case code == 0:
		return classifyStatusless(err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.Wrap(apperrors.Authentication, serverMessage(err, "invalid email or password"), err)
	case code == http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.Authentication, "too many login attempts, try again later", err)
	case code >= 500:
		return classifyServer(code, err)
	default:
		return apperrors.Wrap(apperrors.Validation, serverMessage(err, "login request was rejected"), err)
	}
}

// classifyCall maps a failure of an authenticated call. A 401 here means the
// interceptor could not recover the session.
func classifyCall(err error, action string) error {
	code := backend.StatusCode(err)
	switch {
	case code == 0:
		return classifyStatusless(err)
	case code == http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.SessionExpired, MsgSessionExpired, err)
	case code == http.StatusForbidden:
		return apperrors.Wrap(apperrors.Authorization, serverMessage(err, "not allowed to "+action), err)
	case code >= 500:
		return classifyServer(code, err)
	default:
		return apperrors.Wrap(apperrors.Validation, serverMessage(err, action+" was rejected"), err)
	}
}
