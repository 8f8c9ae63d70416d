// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transport provides the http.RoundTripper that authenticates
// backend requests with the current session and recovers from an expired
// access token by refreshing it once.
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/pterm/pterm"
	"golang.org/x/sync/singleflight"

	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
)

var errNoSession = errors.New("no session to refresh")

// Refresher exchanges the stored refresh token for a new access token.
// On failure it is expected to have ended the session already.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// State is the interceptor's refresh state.
type State int32

const (
	// Normal means requests pass through with the stored token.
	Normal State = iota
	// Refreshing means a refresh call is in flight and 401s wait for it.
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "normal"
}

// Interceptor attaches "Authorization: Bearer <token>" to every request and,
// on a 401, refreshes the access token and retries the request once.
// Concurrent 401s share a single refresh call.
type Interceptor struct {
	base      http.RoundTripper
	store     *session.Store
	refresher Refresher
	log       *pterm.Logger

	group singleflight.Group
	state atomic.Int32
}

var _ http.RoundTripper = (*Interceptor)(nil)

// New returns an interceptor sending requests through base, or
// http.DefaultTransport when base is nil.
func New(store *session.Store, refresher Refresher, base http.RoundTripper, log *pterm.Logger) *Interceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Interceptor{
		base:      base,
		store:     store,
		refresher: refresher,
		log:       logging.OrDiscard(log),
	}
}

// State reports whether a refresh is in flight.
func (t *Interceptor) State() State {
	return State(t.state.Load())
}

// RoundTrip implements http.RoundTripper.
func (t *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	r, err := replayable(req)
	if err != nil {
		return nil, err
	}
	return t.perform(r, false)
}

func (t *Interceptor) perform(req *http.Request, alreadyRetried bool) (*http.Response, error) {
	token := t.store.State().AccessToken

	out := req.Clone(req.Context())
	if alreadyRetried && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || alreadyRetried {
		return resp, err
	}

	if err := t.renew(req.Context(), token); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			drain(resp)
			return nil, ctxErr
		}
		t.log.Debug("token refresh failed, returning original response",
			t.log.Args("path", req.URL.Path, "error", logging.Mask(err.Error())))
		return resp, nil
	}

	drain(resp)
	return t.perform(req, true)
}

// renew makes a new access token available after used was rejected. When
// another request already replaced used, no refresh is made.
func (t *Interceptor) renew(ctx context.Context, used string) error {
	current := t.store.State().AccessToken
	if current != used {
		if current == "" {
			return errNoSession
		}
		return nil
	}
	if used == "" {
		return errNoSession
	}

	ch := t.group.DoChan("refresh", func() (any, error) {
		t.state.Store(int32(Refreshing))
		defer t.state.Store(int32(Normal))
		if current := t.store.State().AccessToken; current != "" && current != used {
			// a flight that ended just before this one already replaced it
			return current, nil
		}
		t.log.Debug("access token rejected, refreshing")
		return t.refresher.Refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if tok, _ := res.Val.(string); tok == "" {
			return errors.New("refresh returned an empty access token")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// replayable returns req, or a copy of it whose body can be read again.
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Body = io.NopCloser(bytes.NewReader(data))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
