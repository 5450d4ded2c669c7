// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	gf := &globalFlags{}
	app.flags = gf

	rootCmd := &cobra.Command{
		Use:   "outguard",
		Short: "Predict and report artifact filename collisions before a build",
		Long: TitleStyle.Render("outguard") + SubtitleStyle.Render(" - artifact output-path assignment and collision detection") + `

outguard reads the finalized unit list of a multi-package build, computes the
file every unit's artifact will occupy, and reports units that would write
the same file. It runs before any compiler does, so the report does not
depend on which unit happens to finish first.

` + SubtitleStyle.Render("Examples:") + `
  outguard check plan.cue               Report collisions in the build directory
  outguard check plan.toml --out-dir d  Also check the flat export directory
  outguard check plan.cue --watch       Re-check whenever the plan changes
  outguard paths plan.yaml              Show every unit's output paths
  outguard explain output-collision     Explain a diagnostic
  outguard config show                  Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&gf.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/outguard/config.cue)")

	rootCmd.AddCommand(
		newCheckCommand(app, gf),
		newPathsCommand(app, gf),
		newSimulateCommand(app, gf),
		newExplainCommand(app, gf),
		newConfigCommand(app, gf),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay uses ActionableError.Format when available, which
// adds help lines and the matching explain topic.
func formatErrorForDisplay(err error, verbose bool) string {
	if ae, ok := issue.AsActionable(err); ok {
		return ae.Format(verbose)
	}
	return err.Error()
}

// handleError prints command errors. An ExitError without a cause has
// already been reported by the command.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	verbose := a.flags != nil && a.flags.verbose
	fmt.Fprintln(w, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, verbose))
}
