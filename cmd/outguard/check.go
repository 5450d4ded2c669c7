// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/collision"
	"github.com/torhovland/outguard/internal/watch"
)

func addOutputFlags(cmd *cobra.Command, of *outputFlags) {
	cmd.Flags().StringVar(&of.outDir, "out-dir", "", "also check the flat export directory DIR")
	cmd.Flags().StringVar(&of.targetDir, "target-dir", "", "build directory (overrides output.target_dir)")
	cmd.Flags().BoolVar(&of.strict, "strict", false, "treat export directory collisions as errors")
}

func newCheckCommand(app *App, gf *globalFlags) *cobra.Command {
	of := &outputFlags{}
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "check PLAN",
		Short: "Report units that would write the same output file",
		Long: `Report units that would write the same output file.

Collisions in the build directory are always warnings. Collisions in the
export directory (--out-dir) are warnings unless --strict or
collisions.strict is set, in which case the command exits with status 1.

With --watch the check is repeated whenever the plan or the config file
changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, report, err := app.runCheck(cmd.Context(), gf, of, args[0])
			if err != nil {
				return err
			}
			if watchFiles {
				return app.watchCheck(cmd.Context(), gf, of, args[0], s.cfgPath)
			}
			if report.HasErrors() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	addOutputFlags(cmd, of)
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "re-check when the plan or config file changes")
	return cmd
}

// runCheck opens a session, checks it and prints the report.
func (a *App) runCheck(ctx context.Context, gf *globalFlags, of *outputFlags, planPath string) (*session, collision.Report, error) {
	s, err := a.openSession(ctx, gf, of, planPath)
	if err != nil {
		return nil, collision.Report{}, err
	}

	report := s.check()
	s.logger.Debug("checked plan", "units", len(s.resolved.Units), "mode", s.mode, "groups", len(report.Groups))
	renderReport(a.stdout, report, len(s.resolved.Units))
	return s, report, nil
}

// watchCheck re-runs the check on every change to the plan or config file.
// Load failures are printed and watching continues.
func (a *App) watchCheck(ctx context.Context, gf *globalFlags, of *outputFlags, planPath, cfgPath string) error {
	files := []string{planPath}
	if cfgPath != "" {
		files = append(files, cfgPath)
	}

	w, err := watch.New(watch.Config{
		Files:  files,
		Logger: a.logger("watch", gf.verbose),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(a.stdout, SubtitleStyle.Render(fmt.Sprintf("--- %s changed, re-checking", changed[0])))
			if _, _, err := a.runCheck(ctx, gf, of, planPath); err != nil {
				fmt.Fprintln(a.stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, gf.verbose))
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render("watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}

// renderReport prints every diagnostic with a colored severity label and a
// one-line summary.
func renderReport(w io.Writer, report collision.Report, units int) {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(w, severityLabel(d.Severity)+" "+d.Message())
		fmt.Fprintln(w)
	}

	if !report.HasCollisions() {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("✓ no output filename collisions among %d units", units)))
		return
	}
	fmt.Fprintf(w, "%d warning(s), %d error(s) across %d colliding path(s)\n",
		len(report.Warnings()), len(report.Errors()), len(report.Paths()))
}

func severityLabel(s collision.Severity) string {
	return severityStyle(s).Render(s.String() + ":")
}
