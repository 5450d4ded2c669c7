// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torhovland/outguard/internal/config"
	"github.com/torhovland/outguard/internal/issue"
)

func newExplainCommand(app *App, gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [TOPIC]",
		Short: "Explain a diagnostic or error",
		Long: `Explain a diagnostic or error.

Without a topic, lists the available topics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, i := range issue.Values() {
					fmt.Fprintf(app.stdout, "%-18s %s\n", i.Id().Slug(), issueTitle(i))
				}
				return nil
			}

			i, ok := issue.Lookup(args[0])
			if !ok {
				var slugs []string
				for _, i := range issue.Values() {
					slugs = append(slugs, i.Id().Slug())
				}
				return fmt.Errorf("unknown topic %q (valid: %s)", args[0], strings.Join(slugs, ", "))
			}

			scheme := config.ColorSchemeAuto
			if loaded, err := app.loadConfig(cmd.Context(), gf); err == nil {
				scheme = loaded.Config.UI.ColorScheme
			}
			out, err := i.Render(glamourStyle(scheme))
			if err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
}

// issueTitle returns the first Markdown heading of an issue.
func issueTitle(i *issue.Issue) string {
	for _, line := range strings.Split(string(i.MarkdownMsg()), "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSuffix(title, "!")
		}
	}
	return ""
}

// glamourStyle maps the configured color scheme onto a glamour style name.
func glamourStyle(cs config.ColorScheme) string {
	switch cs {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
