// Command skydesk serves the airline desk over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xraph/skydesk"
	audithook "github.com/xraph/skydesk/audit_hook"
	"github.com/xraph/skydesk/events"
	"github.com/xraph/skydesk/internal/api"
	"github.com/xraph/skydesk/internal/config"
	"github.com/xraph/skydesk/internal/storage"
	"github.com/xraph/skydesk/internal/telemetry"
	"github.com/xraph/skydesk/observability"
	"github.com/xraph/skydesk/reservation"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("skydesk exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	openCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	st, err := storage.Open(openCtx, cfg.Store)
	cancel()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []skydesk.Option{
		skydesk.WithLogger(logger),
		skydesk.WithFlightCapacity(cfg.FlightCapacity),
		skydesk.WithDepartedGrace(cfg.DepartedGrace),
		skydesk.WithSweepInterval(cfg.SweepInterval),
		skydesk.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))),
		skydesk.WithPlugin(audithook.New(auditLog(logger), audithook.WithLogger(logger))),
	}
	if cfg.EnforceCapacity {
		opts = append(opts, skydesk.WithCapacityPolicy(reservation.CapacityEnforced))
	}
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(cfg.AMQPURL, events.WithLogger(logger))
		if err != nil {
			_ = st.Close()
			return err
		}
		opts = append(opts, skydesk.WithPlugin(pub))
	}

	desk := skydesk.New(st, opts...)
	startCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	err = desk.Start(startCtx)
	cancel()
	if err != nil {
		_ = desk.Stop()
		return err
	}
	defer func() {
		if err := desk.Stop(); err != nil {
			logger.Error("desk shutdown failed", "error", err)
		}
	}()

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		logger.Info("rate limiting disabled: redis not reachable")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e := api.NewRouter(desk, api.Options{
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// auditLog records audit events as structured log lines.
func auditLog(logger *slog.Logger) audithook.Recorder {
	audit := logger.With("component", "audit")
	return audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
		audit.InfoContext(ctx, evt.Action,
			"id", evt.ID.String(),
			"resource", evt.Resource,
			"resource_id", evt.ResourceID,
			"category", evt.Category,
			"outcome", evt.Outcome,
			"severity", evt.Severity,
			"reason", evt.Reason,
			"metadata", evt.Metadata,
		)
		return nil
	})
}
