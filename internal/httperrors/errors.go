// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures into troubleshooting output.
package httperrors

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"cvflow/cli/internal/backend"
)

// Category groups network failures by what the user can do about them.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	Refused
	TLS
	Server
)

func (c Category) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case Refused:
		return "connection refused"
	case TLS:
		return "tls"
	case Server:
		return "server error"
	default:
		return "network"
	}
}

// Classify returns the category of err.
func Classify(err error) Category {
	if code := backend.StatusCode(err); code >= http.StatusInternalServerError {
		return Server
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return TLS
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return Timeout
	case strings.Contains(lower, "connection refused"):
		return Refused
	case strings.Contains(lower, "tls:"), strings.Contains(lower, "x509:"), strings.Contains(lower, "certificate"):
		return TLS
	}
	return Generic
}

// FormatNetworkError prints troubleshooting help for err to the terminal and
// returns err wrapped. action completes "... while <action>".
func FormatNetworkError(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	Render(os.Stderr, err, action, HostOf(baseURL))
	return fmt.Errorf("network error: %w", err)
}

// Render writes the help text for err to w.
func Render(w io.Writer, err error, action, host string) {
	var lines []string
	switch Classify(err) {
	case Timeout:
		lines = []string{
			fmt.Sprintf("Connection to %s timed out while %s.", host, action),
			"The server may be overloaded or a firewall may be dropping the connection.",
			"Try again, or raise the timeout with `cvflow config set timeout 30s`.",
		}
	case DNS:
		lines = []string{
			fmt.Sprintf("Cannot resolve %s while %s.", host, action),
			"Check the api_url setting and your DNS configuration.",
		}
	case Refused:
		lines = []string{
			fmt.Sprintf("Connection to %s refused while %s.", host, action),
			"Is the CVFlow backend running? Check the api_url setting and the port.",
		}
	case TLS:
		lines = []string{
			fmt.Sprintf("Secure connection to %s failed while %s.", host, action),
			"Check the server certificate, any HTTPS proxy, and your system clock.",
		}
	case Server:
		lines = []string{
			fmt.Sprintf("The CVFlow server at %s failed while %s.", host, action),
			"This is a server-side problem; try again in a few minutes.",
		}
	default:
		lines = []string{
			fmt.Sprintf("Cannot reach %s while %s.", host, action),
			"Check your network connection and the api_url setting.",
		}
	}
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
	pterm.Debug.Printfln("Technical details: %s", shorten(err.Error(), 200))
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// HostOf extracts the host of a URL for messages.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "the server"
	}
	return u.Host
}
