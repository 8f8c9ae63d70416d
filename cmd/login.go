// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/auth"
	"cvflow/cli/internal/terminal"
)

var (
	loginEmail    string
	loginPassword string
	loginForce    bool
)

// loginCmd exchanges email and password for a session.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with email and password",
	Long: `The login command signs in to the CVFlow backend and stores the session
(access token, refresh token and profile) in the configured session store.

Missing values are prompted for; the password is never echoed. The password can
also be supplied through CVFLOW_PASSWORD for scripted use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if st := a.auth.Store().State(); st.IsAuthenticated && !loginForce {
			pterm.Info.Printfln("Already logged in as %s (use --force to sign in again)", st.User.Email)
			return nil
		}

		email, password, err := credentials(terminal.Stdio())
		if err != nil {
			return err
		}

		res := withSpinner("Signing in", func() auth.Result {
			return a.auth.Login(cmd.Context(), email, password)
		})
		if !res.Success {
			return a.fail(res.Err(), "logging in")
		}

		user := a.auth.Store().State().User
		pterm.Success.Printfln("Welcome, %s! You're signed in as %s.", user.FullName(), user.RoleName())
		return nil
	},
}

func credentials(p *terminal.Prompter) (string, string, error) {
	email, password := loginEmail, loginPassword
	if password == "" {
		password = os.Getenv("CVFLOW_PASSWORD")
	}
	var err error
	if email == "" {
		if email, err = p.Line("Email"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.Secret("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prefer the prompt or CVFLOW_PASSWORD)")
	loginCmd.Flags().BoolVarP(&loginForce, "force", "f", false, "Sign in even when a session exists")
}
