// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the CVFlow CLI.
// Every command restores the persisted session before it runs, so an
// expired access token is refreshed transparently on the first call that
// needs it.
package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	apperrors "cvflow/cli/internal/errors"
)

var (
	showVersion bool
	flagVerbose bool
	flagConfig  string
	flagAPIURL  string
	flagStore   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cvflow",
	Short: "CVFlow command-line client",
	Long: `cvflow signs in to a CVFlow recruitment backend and talks to its API.

The session (tokens and user profile) is kept in the OS keychain by default,
or in memory or a PostgreSQL table (see "cvflow config").`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			pterm.Error.Println(apperrors.Message(err))
		}
		os.Exit(1)
	}
}

// shownError wraps an error that was already presented to the user.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging (same as CVFLOW_VERBOSE=1)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default $XDG_CONFIG_HOME/cvflow/config.json)")
	pf.StringVar(&flagAPIURL, "api-url", "", "Backend base URL, overrides api_url")
	pf.StringVar(&flagStore, "store", "", "Session store, overrides store (keyring, memory or postgres)")
}
