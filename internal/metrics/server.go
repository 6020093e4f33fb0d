// Package metrics provides a simple Prometheus-compatible metrics endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds runtime metrics for the generator service
type Metrics struct {
	// Generation outcomes
	GenerateAttempts atomic.Int64
	LevelsCreated    atomic.Int64
	LevelsExisting   atomic.Int64
	FallbackLevels   atomic.Int64

	// Persistence
	StoreErrors atomic.Int64

	// Cron entry point
	CronRequests     atomic.Int64
	CronUnauthorized atomic.Int64

	// Timing (last generation duration in ms)
	LastGenerateDurationMs atomic.Int64

	startTime time.Time
}

var (
	global     *Metrics
	globalOnce sync.Once
)

// Global returns the global metrics instance
func Global() *Metrics {
	globalOnce.Do(func() {
		global = &Metrics{
			startTime: time.Now(),
		}
	})
	return global
}

// RecordGenerate records one level generation attempt
func (m *Metrics) RecordGenerate(created bool, fallback bool, durationMs int64) {
	m.GenerateAttempts.Add(1)
	if created {
		m.LevelsCreated.Add(1)
	} else {
		m.LevelsExisting.Add(1)
	}
	if fallback {
		m.FallbackLevels.Add(1)
	}
	m.LastGenerateDurationMs.Store(durationMs)
}

// RecordStoreError records a persistence failure
func (m *Metrics) RecordStoreError() {
	m.StoreErrors.Add(1)
}

// RecordCronRequest records a hit on the cron entry point
func (m *Metrics) RecordCronRequest(authorized bool) {
	m.CronRequests.Add(1)
	if !authorized {
		m.CronUnauthorized.Add(1)
	}
}

// Handler returns an HTTP handler for /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		uptime := time.Since(m.startTime).Seconds()

		fmt.Fprintf(w, "# HELP rutacat_uptime_seconds Time since the service started\n")
		fmt.Fprintf(w, "# TYPE rutacat_uptime_seconds gauge\n")
		fmt.Fprintf(w, "rutacat_uptime_seconds %.2f\n\n", uptime)

		fmt.Fprintf(w, "# HELP rutacat_generate_attempts_total Total level generation attempts\n")
		fmt.Fprintf(w, "# TYPE rutacat_generate_attempts_total counter\n")
		fmt.Fprintf(w, "rutacat_generate_attempts_total %d\n\n", m.GenerateAttempts.Load())

		fmt.Fprintf(w, "# HELP rutacat_levels_created_total Levels newly created\n")
		fmt.Fprintf(w, "# TYPE rutacat_levels_created_total counter\n")
		fmt.Fprintf(w, "rutacat_levels_created_total %d\n\n", m.LevelsCreated.Load())

		fmt.Fprintf(w, "# HELP rutacat_levels_existing_total Generation hits on already-filled slots\n")
		fmt.Fprintf(w, "# TYPE rutacat_levels_existing_total counter\n")
		fmt.Fprintf(w, "rutacat_levels_existing_total %d\n\n", m.LevelsExisting.Load())

		fmt.Fprintf(w, "# HELP rutacat_fallback_levels_total Levels emitted without a rule\n")
		fmt.Fprintf(w, "# TYPE rutacat_fallback_levels_total counter\n")
		fmt.Fprintf(w, "rutacat_fallback_levels_total %d\n\n", m.FallbackLevels.Load())

		fmt.Fprintf(w, "# HELP rutacat_store_errors_total Persistence failures\n")
		fmt.Fprintf(w, "# TYPE rutacat_store_errors_total counter\n")
		fmt.Fprintf(w, "rutacat_store_errors_total %d\n\n", m.StoreErrors.Load())

		fmt.Fprintf(w, "# HELP rutacat_cron_requests_total Cron entry point requests\n")
		fmt.Fprintf(w, "# TYPE rutacat_cron_requests_total counter\n")
		fmt.Fprintf(w, "rutacat_cron_requests_total %d\n\n", m.CronRequests.Load())

		fmt.Fprintf(w, "# HELP rutacat_cron_unauthorized_total Rejected cron requests\n")
		fmt.Fprintf(w, "# TYPE rutacat_cron_unauthorized_total counter\n")
		fmt.Fprintf(w, "rutacat_cron_unauthorized_total %d\n\n", m.CronUnauthorized.Load())

		fmt.Fprintf(w, "# HELP rutacat_last_generate_duration_ms Last generation duration\n")
		fmt.Fprintf(w, "# TYPE rutacat_last_generate_duration_ms gauge\n")
		fmt.Fprintf(w, "rutacat_last_generate_duration_ms %d\n", m.LastGenerateDurationMs.Load())
	}
}

// Server wraps the metrics HTTP server
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server on the given port
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", Global().Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

// Start starts the metrics server in background
func (s *Server) Start() error {
	go s.srv.ListenAndServe()
	return nil
}

// Stop gracefully shuts down the metrics server
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
