// Package httpapi exposes the knowledge base read-only over HTTP.
//
// The API never writes: the learned-pattern store, analytics file and
// history log each have exactly one writer role elsewhere, and this
// server only reads their current state.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/analytics"
	"github.com/fyrsmithlabs/llkb/internal/learnbank"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server serves the knowledge base over HTTP.
type Server struct {
	echo      *echo.Echo
	patterns  *learnbank.Store
	analytics *analytics.Service
	logger    *zap.Logger
	config    *Config
}

// NewServer creates the read-only API server.
func NewServer(patterns *learnbank.Store, analyticsSvc *analytics.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if patterns == nil {
		return nil, fmt.Errorf("pattern store cannot be nil")
	}
	if analyticsSvc == nil {
		return nil, fmt.Errorf("analytics service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9180}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		patterns:  patterns,
		analytics: analyticsSvc,
		logger:    logger,
		config:    cfg,
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/analytics", s.handleAnalytics)
	v1.GET("/patterns", s.handlePatterns)
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalytics returns the current analytics snapshot. A missing file
// yields the zero-valued default, matching the snapshot's regenerable
// semantics.
func (s *Server) handleAnalytics(c echo.Context) error {
	snapshot, err := s.analytics.Load()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load analytics")
	}
	return c.JSON(http.StatusOK, snapshot)
}

// handlePatterns returns the learned-pattern store.
func (s *Server) handlePatterns(c echo.Context) error {
	patterns, err := s.patterns.LoadLearned()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load learned patterns")
	}
	if patterns == nil {
		patterns = []learnbank.LearnedPattern{}
	}
	return c.JSON(http.StatusOK, patterns)
}

// Start begins serving. Blocks until Shutdown or failure.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
