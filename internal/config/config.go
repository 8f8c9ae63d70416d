// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads CLI configuration from config.json in the XDG config
// dir, a .env file and CVFLOW_* environment variables, in increasing order of
// precedence. Only non-secret settings are written back to disk; tokens live
// in the session store.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"cvflow/cli/internal/xdg"
)

// Setting keys.
const (
	KeyAPIURL          = "api_url"
	KeyStore           = "store"
	KeyPostgresDSN     = "postgres_dsn"
	KeyTimeout         = "timeout"
	KeyLogLevel        = "log_level"
	keyKeyringPassword = "keyring_password"
)

// EnvPrefix prefixes every environment override, e.g. CVFLOW_API_URL.
const EnvPrefix = "CVFLOW"

// FileName is the config file inside the XDG config dir.
const FileName = "config.json"

// Stores accepted by the store setting.
var Stores = []string{"keyring", "memory", "postgres"}

// Keys lists the settings `cvflow config set` accepts.
var Keys = []string{KeyAPIURL, KeyStore, KeyPostgresDSN, KeyTimeout, KeyLogLevel}

// Config holds CLI settings.
type Config struct {
	APIURL      string        `mapstructure:"api_url"`
	Store       string        `mapstructure:"store"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LogLevel    string        `mapstructure:"log_level"`
	// KeyringPassword unlocks the encrypted file keyring. Environment only.
	KeyringPassword string `mapstructure:"keyring_password"`
	// File is the config file that was read, or would be written.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "http://localhost:8000/api/v1")
	v.SetDefault(KeyStore, "keyring")
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeyTimeout, "10s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(keyKeyringPassword, "")
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads configuration from configFile, or the default path when empty.
// A missing file yields defaults.
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	file, err := resolveFile(configFile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(file)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !notFound(err) {
		return nil, fmt.Errorf("read config %s: %w", file, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.File = file
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// loadEnvFile loads ./.env when present without overriding the environment.
func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}
}

func resolveFile(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return Path()
}

func notFound(err error) bool {
	var vnf viper.ConfigFileNotFoundError
	return errors.As(err, &vnf) || errors.Is(err, os.ErrNotExist)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if err := validateURL(c.APIURL); err != nil {
		return err
	}
	if !slices.Contains(Stores, c.Store) {
		return fmt.Errorf("invalid %s %q (use %s)", KeyStore, c.Store, strings.Join(Stores, ", "))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid %s %s: must be positive", KeyTimeout, c.Timeout)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: expected an http(s) URL", KeyAPIURL, raw)
	}
	return nil
}

// Set validates value for key and writes it to the config file, leaving
// the environment and other keys untouched.
func Set(configFile, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	file, err := resolveFile(configFile)
	if err != nil {
		return err
	}

	settings, err := readFile(file)
	if err != nil {
		return err
	}
	settings[key] = value

	// validate the file's view merged over defaults
	v := viper.New()
	setDefaults(v)
	for k, val := range settings {
		v.Set(k, val)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return writeFile(file, settings)
}

func readFile(file string) (map[string]any, error) {
	settings := map[string]any{}
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return settings, nil
}

// writeFile writes settings with 0600 permissions.
func writeFile(file string, settings map[string]any) error {
	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return err
	}
	return os.WriteFile(file, append(b, '\n'), 0o600)
}

// Values returns the effective settings keyed by setting name.
func (c *Config) Values() map[string]string {
	return map[string]string{
		KeyAPIURL:      c.APIURL,
		KeyStore:       c.Store,
		KeyPostgresDSN: c.PostgresDSN,
		KeyTimeout:     c.Timeout.String(),
		KeyLogLevel:    c.LogLevel,
	}
}
