// Command arena is the operator CLI for organizations, subscriptions and teams.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/arena/adapter/cli"
	cliMCP "github.com/felixgeelhaar/arena/adapter/cli/mcp"
	"github.com/felixgeelhaar/arena/adapter/cli/org"
	"github.com/felixgeelhaar/arena/adapter/cli/policy"
	"github.com/felixgeelhaar/arena/adapter/cli/subscription"
	"github.com/felixgeelhaar/arena/adapter/cli/team"
	"github.com/felixgeelhaar/arena/adapter/cli/user"
	"github.com/felixgeelhaar/arena/internal/app"
	mcpinternal "github.com/felixgeelhaar/arena/internal/mcp"
	"github.com/felixgeelhaar/arena/pkg/config"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development"}
	}
	logger := observability.LoggerFromConfig(cfg, os.Stderr)
	cli.SetLogger(logger)

	// In development the CLI still runs without a database; commands that
	// need one report ErrNotInitialized.
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		if err := container.Start(ctx); err != nil {
			logger.Warn("read model refresher not started", "error", err)
		}

		cliApp, err = mcpinternal.NewCLIApp(container, cfg.UserID)
		if err != nil {
			logger.Error("failed to create CLI app", "error", err)
			os.Exit(1)
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(user.Cmd)
	cli.AddCommand(org.Cmd)
	cli.AddCommand(subscription.Cmd)
	cli.AddCommand(team.Cmd)
	cli.AddCommand(policy.Cmd)
	cli.AddCommand(cliMCP.Cmd)

	cli.ExecuteContext(ctx)
}
