package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose Arena data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("arena://plans").
		Name("Plans").
		Description("The plan catalog with features and limits").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Policy == nil {
				return nil, fmt.Errorf("plan catalog requires initialization")
			}
			return jsonResource(uri, app.Policy.Catalog().Plans())
		})

	srv.Resource("arena://health").
		Name("Health").
		Description("Health of the database, cache and broker").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Health == nil {
				return nil, fmt.Errorf("health checks require initialization")
			}
			return jsonResource(uri, app.Health.Check(ctx))
		})

	srv.Resource("arena://user/profile").
		Name("Current User").
		Description("The user MCP commands act as").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil {
				return nil, fmt.Errorf("profile requires initialization")
			}
			return jsonResource(uri, map[string]any{"user_id": app.CurrentUserID})
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
