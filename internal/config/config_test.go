// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"CVFLOW_API_URL", "CVFLOW_STORE", "CVFLOW_POSTGRES_DSN", "CVFLOW_TIMEOUT", "CVFLOW_LOG_LEVEL", "CVFLOW_KEYRING_PASSWORD"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", c.APIURL)
	assert.Equal(t, "keyring", c.Store)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, filepath.Join(dir, "cvflow", FileName), c.File)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"api_url":"https://ats.example.com/api/v1","timeout":"30s","store":"memory"}`), 0o600))

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "https://ats.example.com/api/v1", c.APIURL)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, "memory", c.Store)

	t.Setenv("CVFLOW_STORE", "postgres")
	t.Setenv("CVFLOW_POSTGRES_DSN", "postgres://cvflow:secret@db:5432/cvflow")
	t.Setenv("CVFLOW_KEYRING_PASSWORD", "hunter2")
	c, err = Load(file)
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.Store)
	assert.Equal(t, "postgres://cvflow:secret@db:5432/cvflow", c.PostgresDSN)
	assert.Equal(t, "hunter2", c.KeyringPassword)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad store", body: `{"store":"floppy"}`},
		{name: "bad url", body: `{"api_url":"localhost:8000"}`},
		{name: "zero timeout", body: `{"timeout":"0s"}`},
		{name: "malformed json", body: `{"api_url":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			file := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(file, []byte(tt.body), 0o600))
			_, err := Load(file)
			assert.Error(t, err)
		})
	}
}

func TestSet(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "nested", "config.json")

	require.NoError(t, Set(file, KeyAPIURL, "https://ats.example.com/api/v1"))
	require.NoError(t, Set(file, KeyTimeout, "15s"))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "https://ats.example.com/api/v1", c.APIURL)
	assert.Equal(t, 15*time.Second, c.Timeout)

	assert.Error(t, Set(file, "access_token", "t1"))
	assert.Error(t, Set(file, KeyStore, "floppy"))
	assert.Error(t, Set(file, KeyTimeout, "soon"))

	// rejected values leave the file as it was
	c, err = Load(file)
	require.NoError(t, err)
	assert.Equal(t, "keyring", c.Store)
}

func TestValues(t *testing.T) {
	c := &Config{APIURL: "http://x", Store: "memory", Timeout: time.Second, LogLevel: "debug"}
	v := c.Values()
	assert.Equal(t, "1s", v[KeyTimeout])
	assert.Equal(t, "memory", v[KeyStore])
	assert.Len(t, v, len(Keys))
}
