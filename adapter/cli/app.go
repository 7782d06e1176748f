package cli

import (
	"context"

	"github.com/google/uuid"

	billingApp "github.com/felixgeelhaar/arena/internal/billing/application"
	billingCommands "github.com/felixgeelhaar/arena/internal/billing/application/commands"
	identityCommands "github.com/felixgeelhaar/arena/internal/identity/application/commands"
	internalApp "github.com/felixgeelhaar/arena/internal/app"
	organizationCommands "github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	"github.com/felixgeelhaar/arena/internal/readmodel"
	teamCommands "github.com/felixgeelhaar/arena/internal/teams/application/commands"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Identity
	RegisterUserHandler *identityCommands.RegisterUserHandler

	// Organizations
	CreateOrganizationHandler *organizationCommands.CreateOrganizationHandler
	RenameOrganizationHandler *organizationCommands.RenameOrganizationHandler

	// Subscriptions
	CreateSubscriptionHandler  *billingCommands.CreateSubscriptionHandler
	ChangePlanHandler          *billingCommands.ChangePlanHandler
	ChangeStatusHandler        *billingCommands.ChangeStatusHandler
	CancelSubscriptionHandler  *billingCommands.CancelSubscriptionHandler
	ExpireSubscriptionsHandler *billingCommands.ExpireSubscriptionsHandler

	// Teams
	CreateTeamHandler *teamCommands.CreateTeamHandler
	MembershipHandler *teamCommands.MembershipHandler

	// Queries
	Policy    *billingApp.PolicyService
	ReadModel *readmodel.Cache
	Health    *observability.HealthRegistry

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a CLI application backed by the container's handlers.
func NewApp(c *internalApp.Container, currentUser uuid.UUID) *App {
	return &App{
		RegisterUserHandler:        c.RegisterUserHandler,
		CreateOrganizationHandler:  c.CreateOrganizationHandler,
		RenameOrganizationHandler:  c.RenameOrganizationHandler,
		CreateSubscriptionHandler:  c.CreateSubscriptionHandler,
		ChangePlanHandler:          c.ChangePlanHandler,
		ChangeStatusHandler:        c.ChangeStatusHandler,
		CancelSubscriptionHandler:  c.CancelSubscriptionHandler,
		ExpireSubscriptionsHandler: c.ExpireSubscriptionsHandler,
		CreateTeamHandler:          c.CreateTeamHandler,
		MembershipHandler:          c.MembershipHandler,
		Policy:                     c.Policy,
		ReadModel:                  c.ReadModel,
		Health:                     c.Health,
		CurrentUserID:              currentUser,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// ClientID identifies this process as a read-model writer and reader.
func (a *App) ClientID() readmodel.ClientID {
	return readmodel.ClientID("cli:" + a.CurrentUserID.String())
}

// View reads key through the read model, loading it when missing or stale.
func (a *App) View(ctx context.Context, key readmodel.Key) (any, error) {
	return a.ReadModel.Get(ctx, key, a.ClientID())
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

func contextWithCommand(ctx context.Context, info commandContext) context.Context {
	return context.WithValue(ctx, commandContextKey{}, info)
}

func commandFromContext(ctx context.Context) (commandContext, bool) {
	if ctx == nil {
		return commandContext{}, false
	}
	info, ok := ctx.Value(commandContextKey{}).(commandContext)
	return info, ok
}
