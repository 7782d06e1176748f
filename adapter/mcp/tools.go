package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
	// ClientID names this server session in the read model, so its writes
	// are read back optimistically. Generated when empty.
	ClientID readmodel.ClientID
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	if deps.ClientID == "" {
		deps.ClientID = NewSessionClientID()
	}

	if err := registerCoreTools(srv, deps); err != nil {
		return err
	}
	if err := registerOrganizationTools(srv, deps); err != nil {
		return err
	}
	if err := registerSubscriptionTools(srv, deps); err != nil {
		return err
	}
	if err := registerTeamTools(srv, deps); err != nil {
		return err
	}
	if err := registerPolicyTools(srv, deps); err != nil {
		return err
	}

	return nil
}

// NewSessionClientID returns a read-model client id unique to one MCP
// server session.
func NewSessionClientID() readmodel.ClientID {
	return readmodel.ClientID("mcp:" + uuid.NewString())
}
