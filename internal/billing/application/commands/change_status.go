package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// ChangeStatusCommand moves a subscription along its status graph, for
// example when the payment provider reports a failed charge.
type ChangeStatusCommand struct {
	SubscriptionID uuid.UUID
	Status         domain.Status
	ActorID        uuid.UUID
}

// ChangeStatusHandler handles ChangeStatusCommand.
type ChangeStatusHandler struct {
	repo      domain.SubscriptionRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
	now       func() time.Time
}

// NewChangeStatusHandler creates a ChangeStatusHandler.
func NewChangeStatusHandler(
	repo domain.SubscriptionRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *ChangeStatusHandler {
	return &ChangeStatusHandler{repo: repo, uow: uow, publisher: publisher, now: time.Now}
}

// Handle applies the transition.
func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (sharedApplication.CommandResult[*domain.Subscription], error) {
	var result sharedApplication.CommandResult[*domain.Subscription]

	var sub *domain.Subscription
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		sub, err = h.repo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.ChangeStatus(cmd.Status, h.now()); err != nil {
			return err
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
