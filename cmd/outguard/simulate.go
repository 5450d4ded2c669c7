// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/build"
	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/guard"
)

func newSimulateCommand(app *App, gf *globalFlags) *cobra.Command {
	of := &outputFlags{}
	var (
		jobs  int
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate PLAN",
		Short: "Walk the plan as a build would, without compiling",
		Long: `Walk the plan as a build would, without compiling.

Units run in dependency order with up to --jobs in parallel. Units that would
write the same output file take turns. Each unit's compile step only logs
its outputs and sleeps for --delay.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context(), gf, of, args[0])
			if err != nil {
				return err
			}

			report := s.check()
			if err := report.Err(); err != nil {
				renderReport(app.stdout, report, len(s.resolved.Units))
				return &ExitError{Code: 1}
			}

			n := jobs
			if n < 1 {
				n = s.cfg.Build.Jobs
			}
			runner := build.NewRunner(build.Options{
				Jobs:   n,
				Mode:   s.mode,
				Layout: s.layout,
				Guard:  guard.ForReport(report),
				Logger: app.logger("build", gf.verbose),
				Compile: func(ctx context.Context, a filename.Assignment) error {
					s.logger.Info("compile", "unit", a.Unit.Describe(), "outputs", len(a.Candidates))
					if delay <= 0 {
						return nil
					}
					select {
					case <-time.After(delay):
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				},
			})

			res, err := runner.Run(cmd.Context(), s.resolved.Units, s.resolved.Graph)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render(fmt.Sprintf("✓ %d units in %d levels, %d serialized on shared outputs",
				len(res.Completed), len(s.resolved.Levels), res.Serialized)))
			return nil
		},
	}
	addOutputFlags(cmd, of)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel units (default build.jobs)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "simulated compile time per unit")
	return cmd
}
