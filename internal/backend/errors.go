// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's explanation, when it gave one.
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ErrorMessage returns the backend message carried by err, or "".
func ErrorMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// errorBody matches the error envelopes the backend produces:
//
//	{"detail": "Invalid email or password"}
//	{"detail": [{"loc": [...], "msg": "field required"}]}
//	{"detail": {"error": "...", "message": "...", "status_code": 400}}
//	{"message": "..."}
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (b errorBody) text() string {
	if msg := detailText(b.Detail); msg != "" {
		return msg
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	return ""
}

// statusError builds a StatusError from a resty response.
func statusError(resp *resty.Response) error {
	se := &StatusError{
		Method:     resp.Request.Method,
		Path:       pathOf(resp.Request.URL),
		StatusCode: resp.StatusCode(),
	}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		se.Message = body.text()
	}
	if se.Message == "" {
		var body errorBody
		if json.Unmarshal(resp.Body(), &body) == nil {
			se.Message = body.text()
		}
	}
	return se
}

// pathOf strips scheme and host so errors stay short.
func pathOf(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		rest := raw[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
		return "/"
	}
	return raw
}
