package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

type subscriptionCreateInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
	PlanID         string `json:"plan_id,omitempty"`
}

type subscriptionChangePlanInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
	PlanID         string `json:"plan_id" jsonschema:"required"`
}

type subscriptionStatusInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
	Status         string `json:"status" jsonschema:"required"`
}

type subscriptionCancelInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
	AtPeriodEnd    bool   `json:"at_period_end,omitempty"`
}

type subscriptionRevokeInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
}

type subscriptionExpireInput struct {
	Now string `json:"now,omitempty"`
}

func registerSubscriptionTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	respond := func(res subscriptionResult) map[string]any {
		return map[string]any{
			"subscription": readmodel.NewSubscriptionView(res.sub),
			"warnings":     warnings(res.propagation),
		}
	}

	srv.Tool("subscription.create").
		Description("Start a subscription for an organization without an open one").
		Handler(func(ctx context.Context, input subscriptionCreateInput) (map[string]any, error) {
			if app.CreateSubscriptionHandler == nil {
				return nil, errNoDatabase
			}
			orgID, err := parseUUID(input.OrganizationID)
			if err != nil {
				return nil, err
			}
			res, err := app.CreateSubscriptionHandler.Handle(ctx, commands.CreateSubscriptionCommand{
				OrganizationID: orgID,
				PlanID:         billing.PlanID(input.PlanID),
				ActorID:        app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return respond(subscriptionResult{res.Value, res.Propagation}), nil
		})

	srv.Tool("subscription.change_plan").
		Description("Move a subscription to another plan and resize the organization's teams").
		Handler(func(ctx context.Context, input subscriptionChangePlanInput) (map[string]any, error) {
			if app.ChangePlanHandler == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			res, err := app.ChangePlanHandler.Handle(ctx, commands.ChangePlanCommand{
				SubscriptionID: id,
				PlanID:         billing.PlanID(input.PlanID),
				ActorID:        app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return respond(subscriptionResult{res.Value, res.Propagation}), nil
		})

	srv.Tool("subscription.status").
		Description("Change a subscription's status (active, paused, past_due, canceled)").
		Handler(func(ctx context.Context, input subscriptionStatusInput) (map[string]any, error) {
			if app.ChangeStatusHandler == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			status, err := billing.ParseStatus(input.Status)
			if err != nil {
				return nil, err
			}
			res, err := app.ChangeStatusHandler.Handle(ctx, commands.ChangeStatusCommand{
				SubscriptionID: id,
				Status:         status,
				ActorID:        app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return respond(subscriptionResult{res.Value, res.Propagation}), nil
		})

	srv.Tool("subscription.cancel").
		Description("Cancel a subscription now or at the end of its period").
		Handler(func(ctx context.Context, input subscriptionCancelInput) (map[string]any, error) {
			if app.CancelSubscriptionHandler == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			res, err := app.CancelSubscriptionHandler.Handle(ctx, commands.CancelSubscriptionCommand{
				SubscriptionID: id,
				AtPeriodEnd:    input.AtPeriodEnd,
				ActorID:        app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return respond(subscriptionResult{res.Value, res.Propagation}), nil
		})

	srv.Tool("subscription.revoke_cancellation").
		Description("Withdraw a cancellation scheduled for the end of the period").
		Handler(func(ctx context.Context, input subscriptionRevokeInput) (map[string]any, error) {
			if app.CancelSubscriptionHandler == nil {
				return nil, errNoDatabase
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			res, err := app.CancelSubscriptionHandler.Revoke(ctx, commands.RevokeCancellationCommand{
				SubscriptionID: id,
				ActorID:        app.CurrentUserID,
			})
			if err != nil {
				return nil, err
			}
			return respond(subscriptionResult{res.Value, res.Propagation}), nil
		})

	srv.Tool("subscription.expire").
		Description("Finalize scheduled cancellations that are due").
		Handler(func(ctx context.Context, input subscriptionExpireInput) (map[string]any, error) {
			if app.ExpireSubscriptionsHandler == nil {
				return nil, errNoDatabase
			}
			now, err := parseOptionalTime(input.Now)
			if err != nil {
				return nil, err
			}
			res, err := app.ExpireSubscriptionsHandler.Handle(ctx, commands.ExpireSubscriptionsCommand{Now: now})
			result := map[string]any{
				"cancelled": res.Cancelled,
				"failed":    res.Failed,
				"warnings":  warnings(res.Propagation),
			}
			if err != nil {
				result["error"] = err.Error()
			}
			return result, nil
		})

	srv.Tool("subscription.show").
		Description("Show an organization's open subscription").
		Handler(func(ctx context.Context, input organizationIDInput) (any, error) {
			id, err := parseUUID(input.OrganizationID)
			if err != nil {
				return nil, err
			}
			return view(ctx, deps, readmodel.OrganizationSubscriptionKey(id))
		})

	return nil
}

type subscriptionResult struct {
	sub         *billing.Subscription
	propagation error
}
