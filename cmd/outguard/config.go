// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/config"
)

// newConfigCommand creates the `outguard config` command tree.
func newConfigCommand(app *App, gf *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect outguard configuration",
		Long: `Inspect outguard configuration.

Configuration is read from, in order:
  - the file given with --config
  - Linux: $XDG_CONFIG_HOME/outguard/config.cue (default ~/.config)
    macOS: ~/Library/Application Support/outguard/config.cue
    Windows: %APPDATA%\outguard\config.cue
  - ./config.cue

OUTGUARD_* environment variables override file values, for example
OUTGUARD_BUILD_JOBS=4.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context(), gf)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.loadConfig(cmd.Context(), gf)
			if err != nil {
				return err
			}
			if loaded.Path == "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no config file, using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, loaded.Path)
			return nil
		},
	})

	return cfgCmd
}
