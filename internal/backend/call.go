// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Call sends an authenticated request to path and returns the raw response.
// body, when non-empty, is sent as JSON. Non-2xx answers are returned as a
// *StatusError together with the response so callers can still show the body.
func (h *HTTP) Call(ctx context.Context, method, path string, query url.Values, body []byte) (*RawResponse, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, fmt.Errorf("unsupported HTTP method %q", method)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req := h.authed.R().SetContext(ctx).SetError(&errorBody{})
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	out := &RawResponse{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	if resp.IsError() {
		return out, statusError(resp)
	}
	return out, nil
}
