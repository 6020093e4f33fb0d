// Package main provides the rutacat CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	pretty  = true
	jsonOut = false
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rutacat",
		Short: "Daily route puzzles over the comarques of Catalonia",
		Long: `Rutacat generates the daily and weekly route puzzles: find a path
between two comarques across the adjacency map, sometimes under an
extra rule. Generation is deterministic per calendar slot, so every
deployment derives the same puzzle for the same day.

Use 'rutacat generate daily' to fill today's slot.
Use 'rutacat serve' to run the cron endpoint.`,
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Pretty print output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "generate", Title: "Generation:"},
		&cobra.Group{ID: "ops", Title: "Operations:"},
	)

	gen := generateCmd()
	gen.GroupID = "generate"
	rootCmd.AddCommand(gen)

	preview := previewCmd()
	preview.GroupID = "generate"
	rootCmd.AddCommand(preview)

	backfill := backfillCmd()
	backfill.GroupID = "generate"
	rootCmd.AddCommand(backfill)

	serve := serveCmd()
	serve.GroupID = "ops"
	rootCmd.AddCommand(serve)

	status := statusCmd()
	status.GroupID = "ops"
	rootCmd.AddCommand(status)

	rls := rulesCmd()
	rls.GroupID = "ops"
	rootCmd.AddCommand(rls)

	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show rutacat version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rutacat version %s\n", version)
		},
	}
}
