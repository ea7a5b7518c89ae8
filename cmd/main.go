package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/cricscore/internal/adapters/gateway"
	"github.com/okian/cricscore/internal/adapters/http/api"
	"github.com/okian/cricscore/internal/adapters/http/swagger"
	app "github.com/okian/cricscore/internal/app"
	"github.com/okian/cricscore/internal/config"
	"github.com/okian/cricscore/pkg/logger"
	"github.com/okian/cricscore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	// writeSlack is added to the gateway timeout so a slow prediction can
	// still be written back.
	writeSlack = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "cricscore stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	configureMetrics(cfg)

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.GatewayTimeout() + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("predictorURL", cfg.PredictorURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the session service from configuration. A configured
// catalog_path replaces the remote venue catalog.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	client := gateway.NewClient(cfg.PredictorURL,
		gateway.WithTimeout(cfg.GatewayTimeout()),
		gateway.WithLogger(log.Named("gateway")),
	)
	var venues app.CatalogSource = client
	if cfg.CatalogPath != "" {
		venues = gateway.NewFileCatalog(cfg.CatalogPath)
	}
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithPredictor(client),
		app.WithVenueSource(venues),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithRunRateRounding(cfg.PayloadRoundRunRate),
		app.WithSessionReset(cfg.ResetOnSuccess),
	)
}

// configureMetrics applies the metrics_* settings. It must run before the
// router is built, since /healthz binds to the registry at registration.
func configureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
		metrics.WithHistogramBuckets(cfg.MetricsHistogramBuckets),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
}

// newRouter registers the documentation and business routes.
func newRouter(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)

	swagger.Register(ctx, r)
	api.NewServer(svc, svc).Register(ctx, r)
	return r
}

// startSystemMetricsUpdater refreshes system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
