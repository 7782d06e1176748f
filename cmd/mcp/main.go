// Command mcp serves Arena's tools and resources over the Model Context
// Protocol, acting as the user named by ARENA_USER_ID.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/arena/internal/app"
	mcpinternal "github.com/felixgeelhaar/arena/internal/mcp"
	"github.com/felixgeelhaar/arena/pkg/config"
	"github.com/felixgeelhaar/arena/pkg/observability"
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

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer container.Close()

	if err := container.Start(ctx); err != nil {
		return fmt.Errorf("read model refresher: %w", err)
	}

	cliApp, err := mcpinternal.NewCLIApp(container, cfg.UserID)
	if err != nil {
		return err
	}
	return mcpinternal.Serve(ctx, cfg, cliApp, logger)
}
