// Package server exposes the cron HTTP surface that keeps puzzle slots
// filled. Platform schedulers hit it once per cadence; every handler is
// idempotent, so retries and overlapping triggers are harmless.
package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rutacat/rutacat/internal/logging"
	"github.com/rutacat/rutacat/internal/metrics"
	"github.com/rutacat/rutacat/internal/rules"
	"github.com/rutacat/rutacat/internal/schedule"
)

// Server wires the cron endpoints over a schedule runner.
type Server struct {
	runner  *schedule.Runner
	token   string
	engine  *gin.Engine
	log     *logging.Logger
	metrics *metrics.Metrics
	srv     *http.Server
}

// New builds a server. token guards the cron endpoints; an empty token
// rejects every cron request.
func New(runner *schedule.Runner, token string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		runner:  runner,
		token:   token,
		log:     logging.New("server"),
		metrics: metrics.Global(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealth)
	engine.POST("/cron/:cadence", s.authorize, s.handleCron)

	s.engine = engine
	return s
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Info("listening", map[string]any{"addr": addr})

	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// authorize rejects requests without the configured bearer token. The
// comparison is constant time; rejection happens before any slot work.
func (s *Server) authorize(c *gin.Context) {
	token := bearerToken(c)
	ok := s.token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
	s.metrics.RecordCronRequest(ok)

	if !ok {
		s.log.Warn("cron_unauthorized", map[string]any{"path": c.Request.URL.Path}, nil)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleCron ensures the current (or requested) slot for a cadence.
// Query params: key overrides the derived cadence key, mode picks the
// difficulty, force=1 bypasses the run ledger.
func (s *Server) handleCron(c *gin.Context) {
	cadence, err := schedule.ParseCadence(c.Param("cadence"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := rules.ModeClassic
	if id := c.Query("mode"); id != "" {
		m, ok := rules.ModeByID(id)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode " + id})
			return
		}
		mode = m
	}

	key := c.Query("key")
	if key == "" {
		key = schedule.KeyFor(cadence, time.Now())
	} else if _, err := schedule.ParseKey(cadence, key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	force := c.Query("force") == "1"

	res, err := s.runner.Ensure(c.Request.Context(), cadence, key, mode, force)
	if err != nil {
		s.log.Error("cron_failed", map[string]any{"cadence": string(cadence), "key": key}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}
