// Package api serves the operational HTTP endpoints: health, Prometheus
// metrics and scheduler status.
package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weatherbot.app/internal/ports"
	"weatherbot.app/internal/scheduler"
	"weatherbot.app/pkg/errors"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// StatusProvider exposes the scheduler's read-only state
type StatusProvider interface {
	Status() scheduler.Status
}

// HTTPServerAdapter implements the ops HTTP server using Gin
type HTTPServerAdapter struct {
	router *gin.Engine
	server *http.Server
	config ServerConfig
	health ports.SystemHealthChecker
	status StatusProvider
	logger ports.Logger
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config ServerConfig
	Health ports.SystemHealthChecker
	Status StatusProvider
	Logger ports.Logger
}

func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &HTTPServerAdapter{
		router: router,
		config: opts.Config,
		health: opts.Health,
		status: opts.Status,
		logger: opts.Logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.Health == nil {
		return errors.NewValidationError("health checker is required")
	}
	if opts.Status == nil {
		return errors.NewValidationError("status provider is required")
	}
	if opts.Logger == nil {
		return errors.NewValidationError("logger is required")
	}
	return nil
}

func (s *HTTPServerAdapter) setupRoutes() {
	s.router.GET("/health", s.getHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/status", s.getStatus)
		api.GET("/cycles/last", s.getLastCycle)
	}
}

// Start serves until Shutdown is called
func (s *HTTPServerAdapter) Start() error {
	s.logger.Info("Starting HTTP server", ports.F("port", s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.NewUnavailableError("HTTP server failed", err)
	}
	return nil
}

func (s *HTTPServerAdapter) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}
