// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pterm/pterm"

	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:8000/api/v1"

const (
	defaultTimeout = 10 * time.Second
	profileTTL     = 10 * time.Minute
	profileKey     = "me"
)

// Options configures an HTTP client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Transport is the base round tripper for every request. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *pterm.Logger
}

// HTTP implements API over the backend REST endpoints.
// The profile returned by GET /auth/me is cached for ten minutes.
type HTTP struct {
	baseURL string
	base    http.RoundTripper
	// public serves endpoints that take credentials in the body
	public *resty.Client
	// authed serves endpoints that need a bearer token
	authed  *resty.Client
	profile *ttlcache.Cache[string, *session.UserProfile]
	log     *pterm.Logger
}

var _ API = (*HTTP)(nil)

// New creates a client. Until SetAuthTransport is called the authenticated
// client sends requests without credentials.
func New(opts Options) *HTTP {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cvflow-cli"
	}

	h := &HTTP{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		base:    opts.Transport,
		log:     logging.OrDiscard(opts.Logger),
		profile: ttlcache.New(
			ttlcache.WithTTL[string, *session.UserProfile](profileTTL),
			ttlcache.WithDisableTouchOnHit[string, *session.UserProfile](),
		),
	}
	h.public = h.newClient(opts, opts.Transport)
	h.authed = h.newClient(opts, opts.Transport)
	return h
}

func (h *HTTP) newClient(opts Options, rt http.RoundTripper) *resty.Client {
	c := resty.New().
		SetBaseURL(h.baseURL).
		SetTimeout(opts.Timeout).
		SetTransport(rt).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent)

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		h.log.Debug("backend request",
			h.log.Args(
				"method", resp.Request.Method,
				"path", logging.Mask(resp.Request.URL),
				"status", resp.StatusCode(),
				"duration", resp.Time().String(),
				"request_id", resp.Request.Header.Get("X-Request-ID"),
			))
		return nil
	})
	return c
}

// BaseURL returns the normalized base URL.
func (h *HTTP) BaseURL() string { return h.baseURL }

// BaseTransport returns the round tripper requests are ultimately sent with.
func (h *HTTP) BaseTransport() http.RoundTripper { return h.base }

// SetAuthTransport installs rt for requests that need a session. rt is
// expected to attach the bearer token and wrap BaseTransport.
func (h *HTTP) SetAuthTransport(rt http.RoundTripper) {
	h.authed.SetTransport(rt)
}

// InvalidateProfile drops the cached profile.
func (h *HTTP) InvalidateProfile() {
	h.profile.DeleteAll()
}
