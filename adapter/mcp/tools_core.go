package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/arena/internal/identity/application/commands"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

type registerUserInput struct {
	Email string `json:"email" jsonschema:"required"`
	Name  string `json:"name" jsonschema:"required"`
}

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("cli.health").
		Description("Check the health of the backing services").
		Handler(func(ctx context.Context, input struct{}) (any, error) {
			if app.Health == nil {
				return nil, errNoDatabase
			}
			return app.Health.Check(ctx), nil
		})

	srv.Tool("plans.list").
		Description("List the plans in the catalog with their features and limits").
		Handler(func(ctx context.Context, input struct{}) (any, error) {
			if app.Policy == nil {
				return nil, errNoDatabase
			}
			return app.Policy.Catalog().Plans(), nil
		})

	srv.Tool("user.register").
		Description("Register a user").
		Handler(func(ctx context.Context, input registerUserInput) (map[string]any, error) {
			if app.RegisterUserHandler == nil {
				return nil, errNoDatabase
			}
			res, err := app.RegisterUserHandler.Handle(ctx, commands.RegisterUserCommand{Email: input.Email, Name: input.Name})
			if err != nil {
				return nil, err
			}
			u := res.Value
			return map[string]any{
				"id":       u.ID(),
				"email":    u.Email().String(),
				"name":     u.Name().String(),
				"warnings": warnings(res.Propagation),
			}, nil
		})

	return nil
}

func view(ctx context.Context, deps ToolDependencies, key readmodel.Key) (any, error) {
	if deps.App.ReadModel == nil {
		return nil, errNoDatabase
	}
	return deps.App.ReadModel.Get(ctx, key, deps.ClientID)
}
