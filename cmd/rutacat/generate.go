package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rutacat/rutacat/internal/render"
	"github.com/rutacat/rutacat/internal/schedule"
)

func generateCmd() *cobra.Command {
	var key string
	var modeID string
	var force bool

	cmd := &cobra.Command{
		Use:   "generate <daily|weekly>",
		Short: "Generate the level for a puzzle slot",
		Long: `Ensure the level for a cadence slot exists. The slot defaults to the
current date (or ISO week); generation is idempotent, so re-running is
always safe.

Examples:
  rutacat generate daily
  rutacat generate weekly --mode expert
  rutacat generate daily --key 2024-05-17 --force`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cadence, err := schedule.ParseCadence(args[0])
			if err != nil {
				exitErr(err)
			}
			mode, err := resolveMode(modeID)
			if err != nil {
				exitErr(err)
			}
			if key == "" {
				key = schedule.KeyFor(cadence, time.Now())
			}

			runner, st, err := newRunner()
			if err != nil {
				exitErr(err)
			}
			defer st.Close()

			res, err := runner.Ensure(context.Background(), cadence, key, mode, force)
			if err != nil {
				exitErr(err)
			}

			if jsonOut {
				printJSON(res)
				return
			}
			r := render.New(pretty)
			fmt.Print(r.Result(cadence, mode.ID, res))
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Cadence key (defaults to today / current week)")
	cmd.Flags().StringVarP(&modeID, "mode", "m", "", "Difficulty mode (classic or expert)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Bypass the run ledger (not the calendar)")

	return cmd
}

func previewCmd() *cobra.Command {
	var key string
	var modeID string

	cmd := &cobra.Command{
		Use:   "preview <daily|weekly>",
		Short: "Derive a slot's level without persisting it",
		Long: `Build the level a slot would get and print it. Nothing is written, so
preview is safe against a production store.

Examples:
  rutacat preview daily --key 2024-06-01
  rutacat preview weekly --mode expert`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cadence, err := schedule.ParseCadence(args[0])
			if err != nil {
				exitErr(err)
			}
			mode, err := resolveMode(modeID)
			if err != nil {
				exitErr(err)
			}
			if key == "" {
				key = schedule.KeyFor(cadence, time.Now())
			}

			runner, st, err := newRunner()
			if err != nil {
				exitErr(err)
			}
			defer st.Close()

			lvl, err := runner.Preview(context.Background(), cadence, key, mode)
			if err != nil {
				exitErr(err)
			}

			if jsonOut {
				printJSON(lvl)
				return
			}
			g, err := loadGraph()
			if err != nil {
				exitErr(err)
			}

			r := render.New(pretty)
			fmt.Print(r.Level(g, lvl))
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Cadence key (defaults to today / current week)")
	cmd.Flags().StringVarP(&modeID, "mode", "m", "", "Difficulty mode (classic or expert)")

	return cmd
}
