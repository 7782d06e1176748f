package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/google/uuid"
)

// CancelSubscriptionCommand cancels a subscription immediately or at the
// end of its current billing period.
type CancelSubscriptionCommand struct {
	SubscriptionID uuid.UUID
	AtPeriodEnd    bool
	ActorID        uuid.UUID
}

// CancelSubscriptionHandler handles CancelSubscriptionCommand.
type CancelSubscriptionHandler struct {
	repo      domain.SubscriptionRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
	now       func() time.Time
}

// NewCancelSubscriptionHandler creates a CancelSubscriptionHandler.
func NewCancelSubscriptionHandler(
	repo domain.SubscriptionRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *CancelSubscriptionHandler {
	return &CancelSubscriptionHandler{repo: repo, uow: uow, publisher: publisher, now: time.Now}
}

// Handle cancels the subscription.
func (h *CancelSubscriptionHandler) Handle(ctx context.Context, cmd CancelSubscriptionCommand) (sharedApplication.CommandResult[*domain.Subscription], error) {
	var result sharedApplication.CommandResult[*domain.Subscription]

	var sub *domain.Subscription
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		sub, err = h.repo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}

		now := h.now()
		if cmd.AtPeriodEnd {
			err = sub.ScheduleCancellation(sub.CurrentPeriodEnd(now))
		} else {
			err = sub.Cancel(now)
		}
		if err != nil {
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

// RevokeCancellationCommand withdraws a cancellation scheduled for the end of
// the current period.
type RevokeCancellationCommand struct {
	SubscriptionID uuid.UUID
	ActorID        uuid.UUID
}

// Revoke keeps the subscription running past its current period.
func (h *CancelSubscriptionHandler) Revoke(ctx context.Context, cmd RevokeCancellationCommand) (sharedApplication.CommandResult[*domain.Subscription], error) {
	var result sharedApplication.CommandResult[*domain.Subscription]

	var sub *domain.Subscription
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		sub, err = h.repo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.RevokeScheduledCancellation(); err != nil {
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
