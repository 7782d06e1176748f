package mcp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/app"
)

// NewCLIApp creates a CLI application backed by the container, acting as
// the configured user.
func NewCLIApp(container *app.Container, userID string) (*cli.App, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid ARENA_USER_ID %q: %w", userID, err)
	}
	return cli.NewApp(container, id), nil
}
