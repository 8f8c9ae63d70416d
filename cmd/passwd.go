// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/auth"
	"cvflow/cli/internal/terminal"
)

// passwdCmd changes the account password.
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Long: `The passwd command changes the password of the signed-in account. The new
password needs at least 8 characters with at least one letter and one digit.
The current session stays valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		p := terminal.Stdio()
		current, err := p.Secret("Current password")
		if err != nil {
			return err
		}
		next, err := p.Secret("New password")
		if err != nil {
			return err
		}
		confirm, err := p.Secret("Repeat new password")
		if err != nil {
			return err
		}
		if next != confirm {
			return errors.New("the new passwords do not match")
		}

		res := withSpinner("Changing password", func() auth.Result {
			return a.auth.ChangePassword(cmd.Context(), current, next)
		})
		if !res.Success {
			return a.fail(res.Err(), "changing the password")
		}
		pterm.Success.Println("Password changed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}
