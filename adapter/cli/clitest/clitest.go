// Package clitest wires a CLI app on a throwaway SQLite database for
// command tests.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/adapter/cli"
	internalApp "github.com/felixgeelhaar/arena/internal/app"
	identityCommands "github.com/felixgeelhaar/arena/internal/identity/application/commands"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/arena/pkg/config"
)

// New installs a CLI app whose current user is a freshly registered user.
// The global app is reset when the test ends.
func New(t *testing.T) (*cli.App, *internalApp.Container) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:          "test",
		Notifiers:       []string{config.NotifierLog},
		RefreshInterval: 10 * time.Millisecond,
	}
	container, err := internalApp.Wire(context.Background(), cfg, internalApp.Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	res, err := container.RegisterUserHandler.Handle(context.Background(), identityCommands.RegisterUserCommand{
		Email: "owner@acme.test",
		Name:  "Owner",
	})
	require.NoError(t, err)

	a := cli.NewApp(container, res.Value.ID())
	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a, container
}

// Register adds another user and returns its id.
func Register(t *testing.T, c *internalApp.Container, email string) uuid.UUID {
	t.Helper()
	res, err := c.RegisterUserHandler.Handle(context.Background(), identityCommands.RegisterUserCommand{Email: email, Name: email})
	require.NoError(t, err)
	return res.Value.ID()
}

// Run executes cmd's RunE with args and returns what it printed.
func Run(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetContext(context.Background())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.RunE(cmd, args)
	return out.String(), err
}
