package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
)

// ExpireSubscriptionsCommand finalizes every scheduled cancellation that
// is due at Now.
type ExpireSubscriptionsCommand struct {
	Now time.Time
}

// ExpireSubscriptionsResult summarizes a sweep.
type ExpireSubscriptionsResult struct {
	Cancelled   int
	Failed      int
	Propagation error
}

// ExpireSubscriptionsHandler handles ExpireSubscriptionsCommand. Each
// subscription is cancelled in its own unit of work so one failure does not
// hold back the others.
type ExpireSubscriptionsHandler struct {
	repo      domain.SubscriptionRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
	logger    *slog.Logger
}

// NewExpireSubscriptionsHandler creates an ExpireSubscriptionsHandler.
func NewExpireSubscriptionsHandler(
	repo domain.SubscriptionRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
	logger *slog.Logger,
) *ExpireSubscriptionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpireSubscriptionsHandler{repo: repo, uow: uow, publisher: publisher, logger: logger}
}

// Handle runs the sweep. The returned error joins per-subscription
// failures; successfully cancelled subscriptions stay cancelled.
func (h *ExpireSubscriptionsHandler) Handle(ctx context.Context, cmd ExpireSubscriptionsCommand) (ExpireSubscriptionsResult, error) {
	var result ExpireSubscriptionsResult
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}

	due, err := h.repo.FindDueCancellations(ctx, now)
	if err != nil {
		return result, err
	}

	var errs, propagation []error
	for _, candidate := range due {
		var sub *domain.Subscription
		err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			var err error
			sub, err = h.repo.FindByID(txCtx, candidate.ID())
			if err != nil {
				return err
			}
			done, err := sub.CompleteScheduledCancellation(now)
			if err != nil || !done {
				return err
			}
			return h.repo.Save(txCtx, sub)
		})
		if err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("expire subscription %s: %w", candidate.ID(), err))
			h.logger.Error("failed to expire subscription", "subscription_id", candidate.ID(), "error", err)
			continue
		}
		if len(sub.PendingEvents()) == 0 {
			continue
		}

		result.Cancelled++
		if perr := sharedApplication.FlushEvents(ctx, h.publisher, sub); perr != nil {
			propagation = append(propagation, perr)
		}
	}

	result.Propagation = errors.Join(propagation...)
	return result, errors.Join(errs...)
}
