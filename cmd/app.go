// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/auth"
	"cvflow/cli/internal/backend"
	"cvflow/cli/internal/config"
	apperrors "cvflow/cli/internal/errors"
	"cvflow/cli/internal/httperrors"
	"cvflow/cli/internal/keychain"
	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
	"cvflow/cli/internal/xdg"
)

// app is the per-invocation wiring shared by the commands.
type app struct {
	cfg   *config.Config
	log   *pterm.Logger
	api   *backend.HTTP
	auth  *auth.Service
	close func()
}

// loadConfig reads the config and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagStore != "" {
		cfg.Store = flagStore
	}
	if flagVerbose || logging.Verbose() {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// openApp wires config, logging, the session store and the backend client,
// then restores the persisted session.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	if lvl := logging.ParseLevel(cfg.LogLevel); lvl == pterm.LogLevelDebug || lvl == pterm.LogLevelTrace {
		pterm.EnableDebugMessages()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dataDir, err := xdg.DataDir()
	if err != nil {
		return nil, err
	}
	ring, closeRing, err := keychain.Open(ctx, keychain.Options{
		Backend:      cfg.Store,
		FileDir:      dataDir,
		FilePassword: cfg.KeyringPassword,
		PostgresDSN:  cfg.PostgresDSN,
		Logger:       log,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Storage, "could not open the session store", err)
	}

	be := backend.New(backend.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		UserAgent: "cvflow-cli/" + Version,
		Logger:    log,
	})
	svc := auth.Setup(be, session.NewStore(), keychain.NewManager(ring, log), log)
	restored := svc.Restore(ctx)
	log.Debug("session restored", log.Args("authenticated", restored, "store", cfg.Store))

	return &app{cfg: cfg, log: log, api: be, auth: svc, close: closeRing}, nil
}

// fail presents err and marks it as shown.
func (a *app) fail(err error, action string) error {
	if apperrors.KindOf(err) == apperrors.Network {
		_ = httperrors.FormatNetworkError(err, action, a.cfg.APIURL)
	} else {
		pterm.Error.Println(apperrors.Message(err))
	}
	return &shownError{err: err}
}

// requireLogin fails with a hint when there is no session.
func (a *app) requireLogin() error {
	if a.auth.Store().State().IsAuthenticated {
		return nil
	}
	pterm.Warning.Println("You're not logged in. Run `cvflow login` to get started.")
	return &shownError{err: apperrors.New(apperrors.Authorization, "not logged in")}
}
