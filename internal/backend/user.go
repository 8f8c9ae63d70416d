// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jellydator/ttlcache/v3"

	"cvflow/cli/internal/session"
)

// GetMe calls GET /auth/me. A successful result is cached for ten minutes;
// failures are never cached and a stale profile is never served after one.
func (h *HTTP) GetMe(ctx context.Context) (*session.UserProfile, error) {
	if it := h.profile.Get(profileKey); it != nil {
		return it.Value().Clone(), nil
	}

	var out session.UserProfile
	resp, err := h.authed.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorBody{}).
		Get(PathMe)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	if out.ID == "" {
		return nil, errors.New("profile response has no user id")
	}

	h.profile.Set(profileKey, out.Clone(), ttlcache.DefaultTTL)
	return &out, nil
}
