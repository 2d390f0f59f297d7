package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tphakala/swordgate/internal/logger"
)

const (
	endpointReadHeaderTimeout = 5 * time.Second
	endpointShutdownTimeout   = 5 * time.Second
)

// Endpoint serves the Prometheus scrape endpoint on its own listener.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	log           logger.Logger
}

// NewEndpoint creates the metrics endpoint for listenAddress.
func NewEndpoint(listenAddress string, m *Metrics, log logger.Logger) *Endpoint {
	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	if log == nil {
		log = logger.NewDiscardLogger()
	}

	return &Endpoint{
		listenAddress: listenAddress,
		log:           log,
		server: &http.Server{
			Addr:              listenAddress,
			Handler:           mux,
			ReadHeaderTimeout: endpointReadHeaderTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (e *Endpoint) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return err
	}
	return e.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (e *Endpoint) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		e.log.Info("metrics endpoint starting", logger.String("address", listener.Addr().String()))
		errCh <- e.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.log.Info("stopping metrics endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), endpointShutdownTimeout)
	defer cancel()

	if err := e.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
