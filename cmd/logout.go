// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutAll bool

// logoutCmd ends the session locally and, best-effort, on the server.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Long: `The logout command asks the backend to revoke the refresh token and then
removes the access token, refresh token and profile from the session store.
The local session is removed even when the backend cannot be reached.

With --all every session of the account is revoked, on all devices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if logoutAll {
			withSpinner("Signing out everywhere", func() struct{} {
				a.auth.LogoutAll(cmd.Context())
				return struct{}{}
			})
			pterm.Success.Println("Signed out on all devices")
			return nil
		}

		withSpinner("Signing out", func() struct{} {
			a.auth.Logout(cmd.Context())
			return struct{}{}
		})
		pterm.Success.Println("Signed out; the stored session has been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Revoke the sessions of every device")
}
