package commands

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// CreateSubscriptionCommand subscribes an organization to a plan.
type CreateSubscriptionCommand struct {
	OrganizationID uuid.UUID
	PlanID         domain.PlanID
	ActorID        uuid.UUID
}

// CreateSubscriptionHandler handles CreateSubscriptionCommand.
type CreateSubscriptionHandler struct {
	repo      domain.SubscriptionRepository
	catalog   *domain.Catalog
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
}

// NewCreateSubscriptionHandler creates a CreateSubscriptionHandler.
func NewCreateSubscriptionHandler(
	repo domain.SubscriptionRepository,
	catalog *domain.Catalog,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *CreateSubscriptionHandler {
	return &CreateSubscriptionHandler{repo: repo, catalog: catalog, uow: uow, publisher: publisher}
}

// Handle creates the subscription, commits it and publishes
// SubscriptionCreated.
func (h *CreateSubscriptionHandler) Handle(ctx context.Context, cmd CreateSubscriptionCommand) (sharedApplication.CommandResult[*domain.Subscription], error) {
	var result sharedApplication.CommandResult[*domain.Subscription]

	planID := cmd.PlanID
	if planID == "" {
		planID = domain.FreePlan
	}
	if _, err := h.catalog.Plan(planID); err != nil {
		return result, err
	}

	sub, err := domain.NewSubscription(cmd.OrganizationID, planID)
	if err != nil {
		return result, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.repo.Save(txCtx, sub)
	})
	if err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(cmd.ActorID))
	result.Value = sub
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, sub)
	return result, nil
}
