// Package serve implements the command that runs the SWORD endpoint.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/swordgate/internal/api"
	"github.com/tphakala/swordgate/internal/buildinfo"
	"github.com/tphakala/swordgate/internal/conf"
	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/logger"
	"github.com/tphakala/swordgate/internal/observability"
	"github.com/tphakala/swordgate/internal/observability/metrics"
)

const sentryFlushTimeout = 2 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the SWORD v2 endpoint",
		Long:  "Serve the SWORD v2 protocol, forwarding deposits and lookups to the router API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Run(ctx, settings, build)
		},
	}
}

// Run starts the HTTP server, and the metrics endpoint when enabled, and
// blocks until ctx is cancelled or either of them fails.
func Run(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) error {
	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = central.Close() }()

	log := central.Module("main")
	log.Info("starting swordgate",
		logger.String("version", build.GetVersion()),
		logger.String("build_date", build.GetBuildDate()),
		logger.String("config_file", settings.ConfigFile))

	if settings.Sentry.Enabled {
		if err := initSentry(settings, build); err != nil {
			return err
		}
		defer sentry.Flush(sentryFlushTimeout)
		log.Info("error telemetry enabled", logger.String("environment", settings.Sentry.Environment))
	}

	var m *observability.Metrics
	var swordMetrics *metrics.SwordMetrics
	if settings.Metrics.Enabled {
		if m, err = observability.NewMetrics(); err != nil {
			return err
		}
		swordMetrics = m.Sword
	}

	client, err := jper.NewClient(settings.JPERConfig(),
		jper.WithLogger(central.Module("jper")),
		jper.WithMetrics(swordMetrics),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []api.ServerOption{
		api.WithLogger(central.Module("api")),
		api.WithAccessLogger(central.Module("access")),
		api.WithJPERClient(client),
	}
	if m != nil {
		opts = append(opts, api.WithMetrics(m))
	}
	server, err := api.New(settings, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if m != nil {
		endpoint := observability.NewEndpoint(settings.Metrics.Listen, m, central.Module("metrics"))
		g.Go(func() error {
			return endpoint.Run(gctx)
		})
	}

	err = g.Wait()
	if err != nil {
		log.Error("swordgate stopped with error", logger.Error(err))
		return err
	}
	log.Info("swordgate stopped")
	return nil
}

func initSentry(settings *conf.Settings, build *buildinfo.Context) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		Environment:      settings.Sentry.Environment,
		Release:          "swordgate@" + build.GetVersion(),
		ServerName:       build.GetInstanceID(),
		AttachStacktrace: true,
	})
	if err != nil {
		return errors.Newf("sentry initialization failed: %w", err).
			Component("main").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	return nil
}
