// Package swordv2 binds the SWORD v2 protocol operations to HTTP routes.
//
// Every authenticated request gets its own sword.Server, built from the
// caller's forwarded credentials, so notifications fetched while answering
// one request are never visible to another.
package swordv2

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/observability/metrics"
	"github.com/tphakala/swordgate/internal/sword"
)

// GatewayFactory returns the backing gateway acting for auth.
type GatewayFactory func(auth sword.Auth) sword.Gateway

// Controller serves the SWORD v2 routes.
type Controller struct {
	cfg           sword.Config
	gateways      GatewayFactory
	authenticator *sword.Authenticator
	log           logger.Logger
	metrics       *metrics.SwordMetrics
	now           func() time.Time
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger; request loggers derive from it.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records SWORD operation metrics.
func WithMetrics(m *metrics.SwordMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithClock sets the time source for generated documents.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithGatewayFactory replaces the router gateway, mainly for tests.
func WithGatewayFactory(f GatewayFactory) Option {
	return func(c *Controller) {
		if f != nil {
			c.gateways = f
		}
	}
}

// ErrNoGateway is returned by New when neither a router client nor a gateway
// factory is given.
var ErrNoGateway = errors.NewStd("swordv2: a router client or gateway factory is required")

// New creates a Controller forwarding to client. client may be nil when a
// gateway factory is supplied.
func New(cfg sword.Config, client *jper.Client, opts ...Option) (*Controller, error) {
	c := &Controller{
		cfg: cfg,
		log: logger.NewDiscardLogger(),
		now: time.Now,
	}
	if client != nil {
		c.gateways = func(auth sword.Auth) sword.Gateway {
			return sword.NewJPERGateway(client, auth)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gateways == nil {
		return nil, ErrNoGateway
	}
	c.authenticator = sword.NewAuthenticator(c.log)
	return c, nil
}

// RegisterRoutes mounts the SWORD routes under the configured prefix.
func (c *Controller) RegisterRoutes(e *echo.Echo) {
	g := e.Group(c.cfg.RoutePrefix, c.requireAuth)

	g.GET(sword.RouteServiceDocument, c.ServiceDocument)

	g.POST(sword.RouteCollection, c.DepositNew)
	g.GET(sword.RouteCollection, c.ListCollection)

	g.GET(sword.RouteEntry, c.GetContainer)
	g.PUT(sword.RouteEntry, c.Replace)
	g.POST(sword.RouteEntry, c.DepositExisting)
	g.DELETE(sword.RouteEntry, c.DeleteContainer)

	g.GET(sword.RouteEntryContent, c.GetMediaResource)
	g.PUT(sword.RouteEntryContent, c.ReplaceContent)
	g.POST(sword.RouteEntryContent, c.AddContent)
	g.DELETE(sword.RouteEntryContent, c.DeleteContent)

	g.GET(sword.RouteStatement, c.GetStatement)

	c.log.Info("SWORD routes registered",
		logger.String("prefix", c.cfg.RoutePrefix),
		logger.String("base_url", c.cfg.BaseURL))
}

// newServer builds the per-request SWORD server acting for auth.
func (c *Controller) newServer(ctx echo.Context, auth sword.Auth) *sword.Server {
	return sword.NewServer(c.cfg, auth, c.gateways(auth),
		sword.WithLogger(c.log.WithContext(ctx.Request().Context())),
		sword.WithMetrics(c.metrics),
		sword.WithClock(c.now),
	)
}
