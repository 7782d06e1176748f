// Command worker runs the subscription expiry sweep and the read-model
// refresher, with liveness and readiness probes on WORKER_HEALTH_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/arena/internal/app"
	"github.com/felixgeelhaar/arena/pkg/config"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

const (
	probeTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := observability.LoggerFromConfig(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer container.Close()

	// Catch up on periods that ended while no worker was running.
	if err := container.Expiry.RunOnce(ctx); err != nil {
		logger.Warn("startup expiry sweep incomplete", "error", err)
	}
	if err := container.StartWorker(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	logger.Info("worker started", "expiry_interval", cfg.ExpiryInterval)

	if cfg.WorkerHealthAddr != "" {
		probes := &http.Server{
			Addr: cfg.WorkerHealthAddr,
			Handler: observability.NewHealthMux(container.Health, func() any {
				return container.Expiry.GetStats()
			}, probeTimeout),
			ReadHeaderTimeout: shutdownTimeout,
		}
		go func() {
			if err := probes.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health probes stopped", "addr", probes.Addr, "error", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = probes.Shutdown(sctx)
		}()
	}

	<-ctx.Done()

	s := container.Expiry.GetStats()
	logger.Info("worker stopping", "runs", s.Runs, "cancelled", s.Cancelled, "failed", s.Failed)
	return nil
}
