package commands

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// ChangePlanCommand moves a subscription to another plan.
type ChangePlanCommand struct {
	SubscriptionID uuid.UUID
	PlanID         domain.PlanID
	ActorID        uuid.UUID
}

// ChangePlanHandler handles ChangePlanCommand.
type ChangePlanHandler struct {
	repo      domain.SubscriptionRepository
	catalog   *domain.Catalog
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
}

// NewChangePlanHandler creates a ChangePlanHandler.
func NewChangePlanHandler(
	repo domain.SubscriptionRepository,
	catalog *domain.Catalog,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *ChangePlanHandler {
	return &ChangePlanHandler{repo: repo, catalog: catalog, uow: uow, publisher: publisher}
}

// Handle changes the plan. Requesting the current plan commits nothing and
// publishes nothing.
func (h *ChangePlanHandler) Handle(ctx context.Context, cmd ChangePlanCommand) (sharedApplication.CommandResult[*domain.Subscription], error) {
	var result sharedApplication.CommandResult[*domain.Subscription]
	if _, err := h.catalog.Plan(cmd.PlanID); err != nil {
		return result, err
	}

	var sub *domain.Subscription
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		sub, err = h.repo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.ChangePlan(cmd.PlanID); err != nil {
			return err
		}
		if len(sub.PendingEvents()) == 0 {
			return nil
		}
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
