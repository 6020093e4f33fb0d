package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rutacat/rutacat/internal/render"
	"github.com/rutacat/rutacat/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Rule catalog inspection",
	}

	var modeID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog rules",
		Run: func(cmd *cobra.Command, args []string) {
			catalog, err := loadCatalog()
			if err != nil {
				exitErr(err)
			}

			if modeID != "" {
				mode, err := resolveMode(modeID)
				if err != nil {
					exitErr(err)
				}
				catalog = rules.PoolFor(catalog, mode)
			}

			if jsonOut {
				printJSON(catalog)
				return
			}

			w := render.Stdout()
			if len(catalog) == 0 {
				w.Empty("No rules in catalog")
				return
			}

			if pretty {
				w.Header("rule catalog (%d)", len(catalog))
				for _, d := range catalog {
					w.Item("%s %-24s %-16s %s", tierDot(d.Tier), d.ID, d.Kind, render.Truncate(d.Text, 60))
				}
			} else {
				for _, d := range catalog {
					w.Println("%s\t%s\t%s", d.ID, d.Kind, d.Tier)
				}
			}
		},
	}
	listCmd.Flags().StringVarP(&modeID, "mode", "m", "", "Only rules eligible for a mode")

	cmd.AddCommand(listCmd)
	return cmd
}

func tierDot(t rules.Tier) string {
	switch t {
	case rules.TierEasy:
		return color.GreenString("●")
	case rules.TierMedium:
		return color.YellowString("●")
	case rules.TierHard:
		return color.RedString("●")
	default:
		return color.MagentaString("●")
	}
}
