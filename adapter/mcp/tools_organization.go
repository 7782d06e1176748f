package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

type organizationCreateInput struct {
	Name    string `json:"name" jsonschema:"required"`
	OwnerID string `json:"owner_id,omitempty"`
}

type organizationIDInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
}

type organizationRenameInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
	Name           string `json:"name" jsonschema:"required"`
}

func registerOrganizationTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("org.create").
		Description("Create an organization on the free plan").
		Handler(func(ctx context.Context, input organizationCreateInput) (map[string]any, error) {
			if app.CreateOrganizationHandler == nil {
				return nil, errNoDatabase
			}
			ownerID, err := parseOptionalUUID(input.OwnerID, app.CurrentUserID)
			if err != nil {
				return nil, err
			}
			res, err := app.CreateOrganizationHandler.Handle(ctx, commands.CreateOrganizationCommand{Name: input.Name, OwnerID: ownerID})
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"organization": readmodel.NewOrganizationView(res.Value.Organization),
				"subscription": readmodel.NewSubscriptionView(res.Value.Subscription),
				"warnings":     warnings(res.Propagation),
			}, nil
		})

	srv.Tool("org.show").
		Description("Show an organization with its subscription and teams").
		Handler(func(ctx context.Context, input organizationIDInput) (map[string]any, error) {
			id, err := parseUUID(input.OrganizationID)
			if err != nil {
				return nil, err
			}
			org, err := view(ctx, deps, readmodel.OrganizationKey(id))
			if err != nil {
				return nil, err
			}
			teams, err := view(ctx, deps, readmodel.OrganizationTeamsKey(id))
			if err != nil {
				return nil, err
			}
			result := map[string]any{"organization": org, "teams": teams}
			if sub, err := view(ctx, deps, readmodel.OrganizationSubscriptionKey(id)); err == nil {
				result["subscription"] = sub
			}
			return result, nil
		})

	srv.Tool("org.rename").
		Description("Rename an organization").
		Handler(func(ctx context.Context, input organizationRenameInput) (map[string]any, error) {
			if app.RenameOrganizationHandler == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.OrganizationID)
			if err != nil {
				return nil, err
			}
			if app.ReadModel == nil {
				return nil, errNoDatabase
			}
			var propagation error
			rename := func(v readmodel.OrganizationView) readmodel.OrganizationView {
				v.Name = input.Name
				return v
			}
			org, err := readmodel.MutateView(ctx, app.ReadModel, readmodel.OrganizationKey(id), deps.ClientID, rename,
				func(ctx context.Context) (readmodel.OrganizationView, error) {
					res, err := app.RenameOrganizationHandler.Handle(ctx, commands.RenameOrganizationCommand{
						OrganizationID: id,
						Name:           input.Name,
						ActorID:        app.CurrentUserID,
					})
					if err != nil {
						return readmodel.OrganizationView{}, err
					}
					propagation = res.Propagation
					return readmodel.NewOrganizationView(res.Value), nil
				})
			if err != nil {
				return nil, err
			}
			return map[string]any{"organization": org, "warnings": warnings(propagation)}, nil
		})

	return nil
}
