// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/guard"
	"github.com/torhovland/outguard/internal/unit"
)

func newPathsCommand(app *App, gf *globalFlags) *cobra.Command {
	of := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "paths PLAN",
		Short: "Show the output paths assigned to every unit",
		Long: `Show the output paths assigned to every unit.

Each path is labeled primary (written by the compiler), uplift (hash-free
link in the profile directory) or export. Paths shared with another unit are
marked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context(), gf, of, args[0])
			if err != nil {
				return err
			}

			g := guard.ForReport(s.check())
			for _, a := range filename.Assign(unit.Sort(s.resolved.Units), s.mode, s.layout) {
				fmt.Fprintln(app.stdout, TitleStyle.Render(a.Unit.Describe()))
				for _, c := range a.Candidates {
					line := fmt.Sprintf("  %-8s %-8s %s", c.Kind, c.Context, PathStyle.Render(c.Path))
					if g.Contended(c.Path) {
						line += " " + WarningStyle.Render("(collides)")
					}
					fmt.Fprintln(app.stdout, line)
				}
			}
			return nil
		},
	}
	addOutputFlags(cmd, of)
	return cmd
}
