package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rutacat/rutacat/internal/config"
	"github.com/rutacat/rutacat/internal/metrics"
	"github.com/rutacat/rutacat/internal/runtime"
	"github.com/rutacat/rutacat/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cron HTTP endpoint",
		Long: `Serve the cron endpoints that keep puzzle slots filled:

  POST /cron/daily    Ensure today's daily slot
  POST /cron/weekly   Ensure this week's slot
  GET  /healthz       Liveness probe

Cron requests need 'Authorization: Bearer $RUTACAT_CRON_TOKEN'.`,
		Run: func(cmd *cobra.Command, args []string) {
			token := config.Env().CronToken
			if token == "" {
				fmt.Println("Warning: RUTACAT_CRON_TOKEN is empty, cron requests will be rejected")
			}

			runner, st, err := newRunner()
			if err != nil {
				exitErr(err)
			}
			runtime.OnShutdown("store", func(ctx context.Context) error {
				return st.Close()
			})

			srv := server.New(runner, token)
			runtime.OnShutdown("http", srv.Stop)

			if withMetrics {
				ms := metrics.NewServer(config.Env().MetricsPort)
				if err := ms.Start(); err != nil {
					exitErr(err)
				}
				runtime.OnShutdown("metrics", ms.Stop)
			}

			runtime.ListenForSignals()

			go func() {
				if err := srv.Start(addr); err != nil {
					fmt.Printf("server error: %v\n", err)
					runtime.Global().Shutdown()
				}
			}()

			runtime.Global().WaitForShutdown()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().BoolVar(&withMetrics, "metrics", true, "Expose text metrics on the metrics port")

	return cmd
}
