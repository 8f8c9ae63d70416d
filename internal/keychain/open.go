// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"context"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"

	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/pgstore"
)

// Storage backends selectable through the "store" setting.
const (
	BackendKeyring  = "keyring"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Options selects and configures the storage backend.
type Options struct {
	Backend string
	// FileDir holds the encrypted file keyring used when no OS store exists.
	FileDir string
	// FilePassword unlocks the file keyring; empty means prompt on the terminal.
	FilePassword string
	// PostgresDSN is required for BackendPostgres.
	PostgresDSN string
	Logger      *pterm.Logger
}

// Open returns the keyring for opts.Backend and a function releasing it.
func Open(ctx context.Context, opts Options) (keyring.Keyring, func(), error) {
	log := logging.OrDiscard(opts.Logger)
	switch opts.Backend {
	case BackendMemory:
		return keyring.NewArrayKeyring(nil), func() {}, nil
	case BackendPostgres:
		ring, err := pgstore.Open(ctx, opts.PostgresDSN, ServiceName)
		if err != nil {
			return nil, nil, err
		}
		return ring, ring.Close, nil
	case "", BackendKeyring:
		ring, err := openRing(opts, log)
		if err != nil {
			return nil, nil, err
		}
		return ring, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (use %s, %s or %s)", opts.Backend, BackendKeyring, BackendMemory, BackendPostgres)
	}
}

// openRing opens the OS keyring. On macOS the security command is tried first;
// everywhere an encrypted file in FileDir is the last resort.
func openRing(opts Options, log *pterm.Logger) (keyring.Keyring, error) {
	if runtime.GOOS == "darwin" {
		if ring, err := newSecurityKeyring(log); err == nil {
			return ring, nil
		}
		// Fall through to keyring library if security command fails
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends(runtime.GOOS),
		PassPrefix:      ServiceName,
		FileDir:         opts.FileDir,
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	} else {
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("no secure storage available: %w", err)
	}
	log.Debug("opened session keyring", log.Args("os", runtime.GOOS))
	return ring, nil
}

// allowedBackends lists native stores first and the file backend last.
func allowedBackends(goos string) []keyring.BackendType {
	switch goos {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}
}
