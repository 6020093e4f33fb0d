package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rutacat/rutacat/internal/config"
	"github.com/rutacat/rutacat/internal/render"
	"github.com/rutacat/rutacat/internal/store"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store status and slot coverage",
		Run: func(cmd *cobra.Command, args []string) {
			paths := config.GetPaths()

			counts := map[string]int{}
			latest := map[string]string{}
			connected := false

			st, err := openStore()
			if err == nil {
				defer st.Close()
				ctx := context.Background()
				if st.Ping(ctx) == nil {
					connected = true
					for _, cadence := range []string{"daily", "weekly"} {
						if n, err := st.CountLevels(ctx, cadence); err == nil {
							counts[cadence] = n
						}
						if k, err := st.LatestKey(ctx, cadence); err == nil {
							latest[cadence] = k
						} else if !store.IsNotFound(err) {
							latest[cadence] = ""
						}
					}
				}
			}

			if jsonOut {
				printJSON(map[string]any{
					"db":        paths.DB,
					"connected": connected,
					"counts":    counts,
					"latest":    latest,
				})
				return
			}
			r := render.New(pretty)
			fmt.Print(r.Status(paths.DB, connected, counts, latest))
		},
	}
}
