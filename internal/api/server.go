package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/tphakala/swordgate/internal/api/middleware"
	"github.com/tphakala/swordgate/internal/api/swordv2"
	"github.com/tphakala/swordgate/internal/conf"
	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/observability"
	"github.com/tphakala/swordgate/internal/observability/metrics"
)

// Server is the HTTP server of swordgate.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	// Core components
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	log      logger.Logger
	access   logger.Logger

	// Dependencies
	jperClient *jper.Client
	gateways   swordv2.GatewayFactory
	metrics    *observability.Metrics
	now        func() time.Time

	controller *swordv2.Controller
	startTime  time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithAccessLogger sets the logger for per-request access lines.
func WithAccessLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.access = log
	}
}

// WithJPERClient sets the router client deposits and lookups are forwarded to.
func WithJPERClient(client *jper.Client) ServerOption {
	return func(s *Server) {
		s.jperClient = client
	}
}

// WithGatewayFactory replaces the router gateway, mainly for tests.
func WithGatewayFactory(f swordv2.GatewayFactory) ServerOption {
	return func(s *Server) {
		s.gateways = f
	}
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithClock sets the time source for generated documents.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:    config,
		settings:  settings,
		now:       time.Now,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.NewDiscardLogger()
	}
	if s.access == nil {
		s.access = s.log.Module("access")
	}
	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	s.echo.Logger = logger.NewEchoLoggerAdapter(s.log.Module("echo"))

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.access, func(c echo.Context) bool {
		return c.Path() == "/health"
	}))

	var httpMetrics *metrics.HTTPMetrics
	if s.metrics != nil {
		httpMetrics = s.metrics.HTTP
	}
	s.echo.Use(mw.NewHTTPMetrics(httpMetrics))

	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(mw.DefaultSecurityConfig()))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	s.echo.GET("/health", s.healthCheck)

	var swordMetrics *metrics.SwordMetrics
	if s.metrics != nil {
		swordMetrics = s.metrics.Sword
	}

	controller, err := swordv2.New(s.settings.SwordConfig(), s.jperClient,
		swordv2.WithLogger(s.log.Module("sword")),
		swordv2.WithMetrics(swordMetrics),
		swordv2.WithClock(s.now),
		swordv2.WithGatewayFactory(s.gateways),
	)
	if err != nil {
		return err
	}
	s.controller = controller
	s.controller.RegisterRoutes(s.echo)
	return nil
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.settings.Version,
		"build_date":     s.settings.BuildDate,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener. It shuts the server down gracefully
// once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.echo.Listener = listener

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", listener.Addr().String()))
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutdown requested, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.log.Info("Server shutdown complete")
	return nil
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Config returns the effective server configuration.
func (s *Server) Config() *Config {
	return s.config
}
