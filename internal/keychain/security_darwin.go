// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
)

// securityKeyring implements keyring.Keyring with the macOS security command.
// It keeps working where the keychain library fails (macOS 26+).
type securityKeyring struct {
	log *pterm.Logger
}

// newSecurityKeyring creates a new macOS security command backend.
func newSecurityKeyring(log *pterm.Logger) (keyring.Keyring, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityKeyring{log: log}, nil
}

// Set stores an item, replacing any existing entry.
func (s *securityKeyring) Set(item keyring.Item) error {
	s.log.Trace("security: set", s.log.Args("key", item.Key, "length", len(item.Data)))

	// -U updates if the entry exists
	cmd := exec.Command("security", "add-generic-password",
		"-a", ServiceName, // account name
		"-s", item.Key, // service name
		"-w", string(item.Data),
		"-U",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", item.Key, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Get retrieves an item; a missing entry yields keyring.ErrKeyNotFound.
func (s *securityKeyring) Get(key string) (keyring.Item, error) {
	cmd := exec.Command("security", "find-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w", // output password only
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return keyring.Item{}, keyring.ErrKeyNotFound
		}
		return keyring.Item{}, fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	data := strings.TrimSpace(stdout.String())
	s.log.Trace("security: get", s.log.Args("key", key, "length", len(data)))
	return keyring.Item{Key: key, Data: []byte(data)}, nil
}

// GetMetadata is not supported by the security command.
func (s *securityKeyring) GetMetadata(string) (keyring.Metadata, error) {
	return keyring.Metadata{}, keyring.ErrMetadataNotSupported
}

// Remove deletes an entry; a missing entry yields keyring.ErrKeyNotFound.
func (s *securityKeyring) Remove(key string) error {
	cmd := exec.Command("security", "delete-generic-password",
		"-a", ServiceName,
		"-s", key,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return keyring.ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Keys reports which session keys currently exist.
func (s *securityKeyring) Keys() ([]string, error) {
	var keys []string
	for _, k := range sessionKeys {
		if _, err := s.Get(k); err == nil {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
