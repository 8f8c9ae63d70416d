// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/terminal"
)

func TestRequestBody(t *testing.T) {
	b, err := requestBody("")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = requestBody(`{"title":"Go engineer"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Go engineer"}`, string(b))

	_, err = requestBody(`{"title":`)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"title":"From file"}`), 0o600))
	b, err = requestBody("@" + file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"From file"}`, string(b))

	_, err = requestBody("@" + filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseQuery(t *testing.T) {
	q, err := parseQuery([]string{"page=2", "status=new", "status=screening", "empty="})
	require.NoError(t, err)
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, []string{"new", "screening"}, q["status"])
	assert.Equal(t, "", q.Get("empty"))

	_, err = parseQuery([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseQuery([]string{"=x"})
	assert.Error(t, err)
}

func TestPrintBody(t *testing.T) {
	var buf bytes.Buffer
	printBody(&buf, []byte(`{"a":1}`))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	buf.Reset()
	printBody(&buf, []byte("plain text"))
	assert.Equal(t, "plain text", buf.String())

	buf.Reset()
	printBody(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestExpiry(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	sign := func(exp time.Time) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": exp.Unix()}).
			SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}
	assert.Equal(t, "in 15m0s", expiry(sign(now.Add(15*time.Minute)), now))
	assert.Equal(t, "expired (refreshed on next use)", expiry(sign(now.Add(-time.Minute)), now))
	assert.Equal(t, "unknown", expiry("opaque", now))
}

func TestCredentialsPromptsForMissingValues(t *testing.T) {
	t.Setenv("CVFLOW_PASSWORD", "")
	loginEmail, loginPassword = "", ""
	t.Cleanup(func() { loginEmail, loginPassword = "", "" })

	p := terminal.New(strings.NewReader("demo@example.com\ndemo123456\n"), io.Discard)
	email, password, err := credentials(p)
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", email)
	assert.Equal(t, "demo123456", password)

	loginEmail = "flag@example.com"
	t.Setenv("CVFLOW_PASSWORD", "from-env-1")
	email, password, err = credentials(terminal.New(strings.NewReader(""), io.Discard))
	require.NoError(t, err)
	assert.Equal(t, "flag@example.com", email)
	assert.Equal(t, "from-env-1", password)
}

func loginServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "demo123456" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Invalid email or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"t1","refresh_token":"r1","token_type":"bearer","expires_in":1800,
			"user":{"id":"1","email":"demo@example.com","first_name":"Demo","last_name":"User","is_active":true}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Cleanup(func() {
		flagAPIURL, flagStore, loginEmail, loginPassword, loginForce = "", "", "", "", false
	})
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestLoginCommand(t *testing.T) {
	srv := loginServer(t)

	err := runCLI(t, "login", "--store", "memory", "--api-url", srv.URL+"/api/v1",
		"--email", "demo@example.com", "--password", "demo123456")
	assert.NoError(t, err)

	err = runCLI(t, "login", "--store", "memory", "--api-url", srv.URL+"/api/v1",
		"--email", "demo@example.com", "--password", "wrong-password")
	require.Error(t, err)
	var shown *shownError
	assert.True(t, errors.As(err, &shown))
	assert.Equal(t, apperrors.Authentication, apperrors.KindOf(err))
}

func TestInvalidStoreFlag(t *testing.T) {
	err := runCLI(t, "status", "--store", "floppy")
	assert.Error(t, err)
}
