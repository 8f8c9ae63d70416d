// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/session"
)

var meJSON bool

// meCmd shows the signed-in user's profile.
var meCmd = &cobra.Command{
	Use:     "me",
	Aliases: []string{"whoami"},
	Short:   "Show the signed-in user",
	Long: `The me command fetches the current profile from the backend and updates
the stored copy. An expired access token is refreshed on the way.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireLogin(); err != nil {
			return err
		}

		user, err := spin("Loading profile", func() (*session.UserProfile, error) {
			return a.auth.RefreshProfile(cmd.Context())
		})
		if err != nil {
			return a.fail(err, "loading your profile")
		}

		if meJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		}
		return renderProfile(user)
	},
}

func renderProfile(u *session.UserProfile) error {
	phone := "-"
	if u.Phone != nil && *u.Phone != "" {
		phone = *u.Phone
	}
	status := "active"
	if !u.IsActive {
		status = "inactive"
	}
	rows := pterm.TableData{
		{"Name", u.FullName()},
		{"Email", u.Email},
		{"Phone", phone},
		{"Role", u.RoleName()},
		{"Status", status},
		{"User ID", u.ID},
		{"Member since", u.CreatedAt},
	}
	if err := pterm.DefaultTable.WithData(rows).Render(); err != nil {
		return err
	}

	if u.Role == nil || len(u.Role.Permissions) == 0 {
		return nil
	}
	perms := pterm.TableData{{"Permission", "Code", "Category"}}
	for _, p := range u.Role.Permissions {
		perms = append(perms, []string{p.Name, p.Code, p.Category})
	}
	pterm.Println()
	pterm.DefaultSection.WithLevel(2).Println(fmt.Sprintf("Permissions (%d)", len(u.Role.Permissions)))
	return pterm.DefaultTable.WithHasHeader().WithData(perms).Render()
}

func init() {
	rootCmd.AddCommand(meCmd)
	meCmd.Flags().BoolVar(&meJSON, "json", false, "Print the profile as JSON")
}
