// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/logging"
	"cvflow/cli/internal/session"
)

var statusRemote bool

// statusCmd reports the stored session without contacting the backend,
// unless --remote is given.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		st := a.auth.Store().State()
		if !st.IsAuthenticated {
			pterm.Info.Println("Not logged in")
			return nil
		}

		rows := pterm.TableData{
			{"User", st.User.Email},
			{"Role", st.User.RoleName()},
			{"Store", a.cfg.Store},
			{"Backend", a.cfg.APIURL},
			{"Access token", logging.MaskToken(st.AccessToken)},
			{"Expires", expiry(st.AccessToken, time.Now())},
		}
		if err := pterm.DefaultTable.WithData(rows).Render(); err != nil {
			return err
		}

		if !statusRemote {
			return nil
		}
		valid, err := spin("Checking session", func() (bool, error) {
			return a.auth.Validate(cmd.Context())
		})
		if err != nil {
			return a.fail(err, "validating the session")
		}
		if !valid {
			pterm.Warning.Println("The backend no longer accepts this session. Run `cvflow login`.")
			return nil
		}
		pterm.Success.Println("The backend accepts this session")
		return nil
	},
}

// expiry describes when the access token expires. The token is decoded
// without verification; only the backend can tell whether it is valid.
func expiry(token string, now time.Time) string {
	c, err := session.ParseAccessClaims(token)
	if err != nil || c.ExpiresAt.IsZero() {
		return "unknown"
	}
	if c.Expired(now) {
		return "expired (refreshed on next use)"
	}
	return "in " + c.Remaining(now).Truncate(time.Second).String()
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusRemote, "remote", false, "Also ask the backend whether the session is valid")
}
