package commands

import (
	"context"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	identity "github.com/felixgeelhaar/arena/internal/identity/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// CreateOrganizationCommand signs an organization up on the free plan.
type CreateOrganizationCommand struct {
	Name    string
	OwnerID uuid.UUID
}

// CreateOrganizationResult carries the organization and its first
// subscription.
type CreateOrganizationResult struct {
	Organization *domain.Organization
	Subscription *billing.Subscription
}

// CreateOrganizationHandler handles CreateOrganizationCommand.
type CreateOrganizationHandler struct {
	orgs          domain.OrganizationRepository
	subscriptions billing.SubscriptionRepository
	users         identity.UserRepository
	uow           sharedApplication.UnitOfWork
	publisher     sharedApplication.EventPublisher
}

// NewCreateOrganizationHandler creates a CreateOrganizationHandler.
func NewCreateOrganizationHandler(
	orgs domain.OrganizationRepository,
	subscriptions billing.SubscriptionRepository,
	users identity.UserRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *CreateOrganizationHandler {
	return &CreateOrganizationHandler{
		orgs:          orgs,
		subscriptions: subscriptions,
		users:         users,
		uow:           uow,
		publisher:     publisher,
	}
}

// Handle stores the organization together with a free subscription and
// publishes both aggregates' events, organization first.
func (h *CreateOrganizationHandler) Handle(ctx context.Context, cmd CreateOrganizationCommand) (sharedApplication.CommandResult[CreateOrganizationResult], error) {
	var result sharedApplication.CommandResult[CreateOrganizationResult]

	if _, err := h.users.FindByID(ctx, cmd.OwnerID); err != nil {
		return result, err
	}

	org, err := domain.NewOrganization(cmd.Name, cmd.OwnerID)
	if err != nil {
		return result, err
	}
	sub, err := billing.NewSubscription(org.ID(), billing.FreePlan)
	if err != nil {
		return result, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.orgs.Save(txCtx, org); err != nil {
			return err
		}
		return h.subscriptions.Save(txCtx, sub)
	})
	if err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(cmd.OwnerID))
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, org, sub)
	result.Value = CreateOrganizationResult{Organization: org, Subscription: sub}
	return result, nil
}
