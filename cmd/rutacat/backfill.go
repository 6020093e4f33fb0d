package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rutacat/rutacat/internal/render"
	"github.com/rutacat/rutacat/internal/schedule"
)

func backfillCmd() *cobra.Command {
	var cadenceStr string
	var from string
	var to string
	var dates string
	var modeID string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing levels over a date range",
		Long: `Generate levels for every missing slot in a range. Slots already
holding a level are skipped; one failing slot does not stop the batch.

Examples:
  rutacat backfill --from 2024-05-01 --to 2024-05-31
  rutacat backfill --cadence weekly --from 2024-01-01 --to 2024-03-31
  rutacat backfill --dates 2024-05-17,2024-05-19 --mode expert`,
		Run: func(cmd *cobra.Command, args []string) {
			cadence, err := schedule.ParseCadence(cadenceStr)
			if err != nil {
				exitErr(err)
			}
			mode, err := resolveMode(modeID)
			if err != nil {
				exitErr(err)
			}

			var keys []string
			switch {
			case dates != "":
				for _, k := range strings.Split(dates, ",") {
					if k = strings.TrimSpace(k); k != "" {
						keys = append(keys, k)
					}
				}
			case from != "" && to != "":
				start, err := schedule.ParseDay(from)
				if err != nil {
					exitErr(err)
				}
				end, err := schedule.ParseDay(to)
				if err != nil {
					exitErr(err)
				}
				keys = schedule.KeysInRange(cadence, start, end)
			default:
				exitErr(fmt.Errorf("need --from/--to or --dates"))
			}
			if len(keys) == 0 {
				exitErr(fmt.Errorf("empty range"))
			}

			runner, st, err := newRunner()
			if err != nil {
				exitErr(err)
			}
			defer st.Close()

			out, err := runner.Backfill(context.Background(), cadence, keys, mode)
			if err != nil {
				exitErr(err)
			}

			if jsonOut {
				printJSON(out)
				return
			}
			r := render.New(pretty)
			fmt.Print(r.Backfill(cadence, mode.ID, out))
		},
	}

	cmd.Flags().StringVarP(&cadenceStr, "cadence", "c", "daily", "Cadence (daily or weekly)")
	cmd.Flags().StringVar(&from, "from", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Range end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates, "dates", "", "Comma-separated cadence keys")
	cmd.Flags().StringVarP(&modeID, "mode", "m", "", "Difficulty mode (classic or expert)")

	return cmd
}
