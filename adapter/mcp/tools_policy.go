package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	billingApp "github.com/felixgeelhaar/arena/internal/billing/application"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

type policyAccessInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
	Feature        string `json:"feature" jsonschema:"required"`
}

type policyLimitInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
	Metric         string `json:"metric" jsonschema:"required"`
	Value          int    `json:"value"`
}

func registerPolicyTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("policy.access").
		Description("Check whether an organization's plan includes a feature").
		Handler(func(ctx context.Context, input policyAccessInput) (billingApp.AccessDecision, error) {
			if app.Policy == nil {
				return billingApp.AccessDecision{}, errNoDatabase
			}
			orgID, err := parseUUID(input.OrganizationID)
			if err != nil {
				return billingApp.AccessDecision{}, err
			}
			return app.Policy.HasAccess(ctx, input.Feature, orgID)
		})

	srv.Tool("policy.limit").
		Description("Check a value against an organization's plan limit (team_members, teams, storage_gb)").
		Handler(func(ctx context.Context, input policyLimitInput) (billingApp.AccessDecision, error) {
			if app.Policy == nil {
				return billingApp.AccessDecision{}, errNoDatabase
			}
			orgID, err := parseUUID(input.OrganizationID)
			if err != nil {
				return billingApp.AccessDecision{}, err
			}
			return app.Policy.IsWithinLimits(ctx, billing.Metric(input.Metric), input.Value, orgID)
		})

	return nil
}
