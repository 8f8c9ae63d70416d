// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"cvflow/cli/internal/backend"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{
			name: "server status",
			err:  fmt.Errorf("load profile: %w", &backend.StatusError{Method: "GET", Path: "/api/v1/auth/me", StatusCode: 502}),
			want: Server,
		},
		{
			name: "client status is generic",
			err:  &backend.StatusError{StatusCode: 404},
			want: Generic,
		},
		{
			name: "dns",
			err:  &url.Error{Op: "Get", URL: "http://ats.invalid", Err: &net.DNSError{Err: "no such host", Name: "ats.invalid"}},
			want: DNS,
		},
		{
			name: "refused",
			err:  &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			want: Refused,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("login request: %w", context.DeadlineExceeded),
			want: Timeout,
		},
		{
			name: "tls text",
			err:  errors.New("tls: failed to verify certificate: x509: certificate signed by unknown authority"),
			want: TLS,
		},
		{
			name: "other",
			err:  errors.New("EOF"),
			want: Generic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderMentionsHostAndAction(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, errors.New("connection refused"), "logging in", "localhost:8000")
	out := buf.String()
	if !strings.Contains(out, "localhost:8000") || !strings.Contains(out, "logging in") {
		t.Errorf("Render() output %q lacks host or action", out)
	}
}

func TestHostOf(t *testing.T) {
	if got := HostOf("https://ats.example.com/api/v1"); got != "ats.example.com" {
		t.Errorf("HostOf() = %q", got)
	}
	if got := HostOf("::bad"); got != "the server" {
		t.Errorf("HostOf(bad) = %q", got)
	}
}

func TestFormatNetworkErrorNil(t *testing.T) {
	if err := FormatNetworkError(nil, "x", ""); err != nil {
		t.Errorf("FormatNetworkError(nil) = %v", err)
	}
}
