// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cvflow/cli/internal/config"
	"cvflow/cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
	Long: `Settings are read from config.json in the XDG config dir, then .env, then
CVFLOW_* environment variables (CVFLOW_API_URL, CVFLOW_STORE,
CVFLOW_POSTGRES_DSN, CVFLOW_TIMEOUT, CVFLOW_LOG_LEVEL).

Keys: ` + strings.Join(config.Keys, ", "),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		values := cfg.Values()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		rows := pterm.TableData{{"Key", "Value"}}
		for _, k := range keys {
			v := values[k]
			if k == config.KeyPostgresDSN {
				v = logging.Mask(v)
			}
			if v == "" {
				v = "-"
			}
			rows = append(rows, []string{k, v})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Info.Printfln("Config file: %s", cfg.File)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <KEY> <VALUE>",
	Short:     "Write a setting to the config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(flagConfig, args[0], args[1]); err != nil {
			return err
		}
		pterm.Success.Printfln("%s updated", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
