// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import (
	"errors"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
)

// newSecurityKeyring is only available on macOS.
func newSecurityKeyring(*pterm.Logger) (keyring.Keyring, error) {
	return nil, errors.New("security backend only available on macOS")
}
