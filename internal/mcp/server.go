package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/arena/adapter/cli"
	mcplocal "github.com/felixgeelhaar/arena/adapter/mcp"
	"github.com/felixgeelhaar/arena/pkg/config"
)

// ServerName is advertised to MCP clients during initialization.
const ServerName = "arena-mcp"

var (
	ErrNoApp    = errors.New("mcp: cli app is required")
	ErrNoConfig = errors.New("mcp: config is required")
)

// NewServer registers every Arena tool and resource on a fresh MCP server.
// Resource registration failures are logged, not returned.
func NewServer(cliApp *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, ErrNoApp
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:         ServerName,
		Version:      cli.CurrentBuild().Version,
		Capabilities: mcpgo.Capabilities{Tools: true, Resources: true},
	})

	deps := mcplocal.ToolDependencies{App: cliApp, ClientID: mcplocal.NewSessionClientID()}
	if err := mcplocal.RegisterCLITools(srv, deps); err != nil {
		return nil, err
	}
	if err := mcplocal.RegisterResources(srv, deps); err != nil {
		logger.Warn("mcp resources unavailable", "error", err)
	}
	return srv, nil
}

// Serve runs the MCP server over HTTP on cfg.MCPAddr until ctx is done.
// When cfg.MCPAuthToken is set every request must carry it as a bearer token.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	switch {
	case cfg == nil:
		return ErrNoConfig
	case cliApp == nil:
		return ErrNoApp
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := NewServer(cliApp, logger)
	if err != nil {
		return err
	}

	mw := middlewareStack(cfg, slogAdapter{logger})
	if cfg.MCPAuthToken == "" {
		logger.Warn("MCP_AUTH_TOKEN empty, serving without authentication")
	}

	logger.Info("mcp serving", "addr", cfg.MCPAddr, "tools", true, "resources", true)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(mw...))
}

func middlewareStack(cfg *config.Config, log slogAdapter) []middleware.Middleware {
	stack := middleware.DefaultStack(log)
	if cfg.MCPAuthToken == "" {
		return stack
	}
	tokens := middleware.StaticTokens(map[string]*middleware.Identity{
		cfg.MCPAuthToken: {ID: "arena-operator", Name: "arena operator"},
	})
	auth := middleware.Auth(middleware.BearerTokenAuthenticator(tokens), middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...)
}

// slogAdapter satisfies the mcp-go middleware logger with a slog.Logger.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) log(level slog.Level, msg string, fields []middleware.Field) {
	a.l.Log(context.Background(), level, msg, fieldsToArgs(fields)...)
}

func (a slogAdapter) Debug(msg string, fields ...middleware.Field) { a.log(slog.LevelDebug, msg, fields) }
func (a slogAdapter) Info(msg string, fields ...middleware.Field)  { a.log(slog.LevelInfo, msg, fields) }
func (a slogAdapter) Warn(msg string, fields ...middleware.Field)  { a.log(slog.LevelWarn, msg, fields) }
func (a slogAdapter) Error(msg string, fields ...middleware.Field) { a.log(slog.LevelError, msg, fields) }

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
