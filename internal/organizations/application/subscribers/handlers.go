package subscribers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	notifications "github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// Consumer is a named event handler the event bus can register.
type Consumer interface {
	Name() string
	EventTypes() []string
	Handle(ctx context.Context, event sharedDomain.DomainEvent) error
}

// Dependencies are shared by all subscription handlers.
type Dependencies struct {
	Organizations domain.OrganizationRepository
	Propagator    *LimitPropagator
	Notifier      notifications.Sender
	UnitOfWork    sharedApplication.UnitOfWork
	Publisher     sharedApplication.EventPublisher
	Logger        *slog.Logger
}

// NewConsumers returns the subscription handlers in registration order.
func NewConsumers(deps Dependencies) []Consumer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return []Consumer{
		&SubscriptionCreatedHandler{deps: deps},
		&SubscriptionStatusChangedHandler{deps: deps},
		&SubscriptionPlanChangedHandler{deps: deps},
		&SubscriptionCancelledHandler{deps: deps},
	}
}

func unexpected(event sharedDomain.DomainEvent) error {
	return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
}

// sync loads the organization, applies fn and saves it when fn reports a
// change. Events are flushed after commit.
func (d Dependencies) sync(ctx context.Context, orgID uuid.UUID, fn func(*domain.Organization) (bool, error)) (*domain.Organization, bool, error) {
	var (
		org     *domain.Organization
		changed bool
	)
	err := sharedApplication.WithUnitOfWork(ctx, d.UnitOfWork, func(txCtx context.Context) error {
		var err error
		if org, err = d.Organizations.FindByID(txCtx, orgID); err != nil {
			return err
		}
		if changed, err = fn(org); err != nil || !changed {
			return err
		}
		return d.Organizations.Save(txCtx, org)
	})
	if err != nil {
		return nil, false, err
	}
	return org, changed, sharedApplication.FlushEvents(ctx, d.Publisher, org)
}

// SubscriptionCreatedHandler puts a newly subscribed organization on its
// plan and sizes its teams.
type SubscriptionCreatedHandler struct{ deps Dependencies }

func (h *SubscriptionCreatedHandler) Name() string { return "organizations.subscription-created" }
func (h *SubscriptionCreatedHandler) EventTypes() []string {
	return []string{billing.EventSubscriptionCreated}
}

func (h *SubscriptionCreatedHandler) Handle(ctx context.Context, event sharedDomain.DomainEvent) error {
	e, ok := event.(*billing.SubscriptionCreated)
	if !ok {
		return unexpected(event)
	}
	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.CausedBy(event))

	org, _, flushErr := h.deps.sync(ctx, e.OrganizationID, func(o *domain.Organization) (bool, error) {
		return o.SyncSubscription(e.PlanID, domain.StatusForSubscription(e.Status), e.OccurredAt())
	})
	if org == nil {
		return flushErr
	}
	_, err := h.deps.Propagator.Propagate(ctx, org.ID(), org.PlanID())
	return errors.Join(flushErr, err)
}

// SubscriptionStatusChangedHandler mirrors a non-terminal status change on
// the organization. Cancellation is handled by SubscriptionCancelledHandler.
type SubscriptionStatusChangedHandler struct{ deps Dependencies }

func (h *SubscriptionStatusChangedHandler) Name() string {
	return "organizations.subscription-status-changed"
}
func (h *SubscriptionStatusChangedHandler) EventTypes() []string {
	return []string{billing.EventSubscriptionStatusChanged}
}

func (h *SubscriptionStatusChangedHandler) Handle(ctx context.Context, event sharedDomain.DomainEvent) error {
	e, ok := event.(*billing.SubscriptionStatusChanged)
	if !ok {
		return unexpected(event)
	}
	if e.NewStatus == billing.StatusCanceled {
		return nil
	}
	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.CausedBy(event))

	_, _, err := h.deps.sync(ctx, e.OrganizationID, func(o *domain.Organization) (bool, error) {
		// The plan is owned by plan-changed events; a re-delivered status
		// event may carry an older one.
		return o.SyncSubscription(o.PlanID(), domain.StatusForSubscription(e.NewStatus), e.OccurredAt())
	})
	return err
}

// SubscriptionPlanChangedHandler moves the organization to the new plan
// and resizes its teams.
type SubscriptionPlanChangedHandler struct{ deps Dependencies }

func (h *SubscriptionPlanChangedHandler) Name() string {
	return "organizations.subscription-plan-changed"
}
func (h *SubscriptionPlanChangedHandler) EventTypes() []string {
	return []string{billing.EventSubscriptionPlanChanged}
}

func (h *SubscriptionPlanChangedHandler) Handle(ctx context.Context, event sharedDomain.DomainEvent) error {
	e, ok := event.(*billing.SubscriptionPlanChanged)
	if !ok {
		return unexpected(event)
	}
	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.CausedBy(event))

	org, _, flushErr := h.deps.sync(ctx, e.OrganizationID, func(o *domain.Organization) (bool, error) {
		return o.SyncSubscription(e.NewPlanID, o.Status(), e.OccurredAt())
	})
	if org == nil {
		return flushErr
	}
	_, err := h.deps.Propagator.Propagate(ctx, org.ID(), org.PlanID())
	return errors.Join(flushErr, err)
}

// SubscriptionCancelledHandler reverts the organization to the free plan,
// shrinks its team caps and tells every member once.
type SubscriptionCancelledHandler struct{ deps Dependencies }

func (h *SubscriptionCancelledHandler) Name() string { return "organizations.subscription-cancelled" }
func (h *SubscriptionCancelledHandler) EventTypes() []string {
	return []string{billing.EventSubscriptionCancelled}
}

func (h *SubscriptionCancelledHandler) Handle(ctx context.Context, event sharedDomain.DomainEvent) error {
	e, ok := event.(*billing.SubscriptionCancelled)
	if !ok {
		return unexpected(event)
	}
	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.CausedBy(event))

	org, reverted, flushErr := h.deps.sync(ctx, e.OrganizationID, func(o *domain.Organization) (bool, error) {
		return o.RevertToFree(e.CancelledAt)
	})
	if org == nil {
		return flushErr
	}

	result, err := h.deps.Propagator.Propagate(ctx, org.ID(), org.PlanID())
	errs := []error{flushErr, err}

	// A re-delivered cancellation finds the organization already reverted
	// and must not notify again.
	if reverted && h.deps.Notifier != nil {
		errs = append(errs, h.notify(ctx, org, e, result))
	}
	return errors.Join(errs...)
}

func (h *SubscriptionCancelledHandler) notify(ctx context.Context, org *domain.Organization, e *billing.SubscriptionCancelled, result PropagationResult) error {
	seen := make(map[uuid.UUID]struct{})
	var errs []error
	for _, team := range result.Teams {
		for _, m := range team.Members() {
			if _, dup := seen[m.UserID]; dup {
				continue
			}
			seen[m.UserID] = struct{}{}

			n := notifications.New(notifications.KindSubscriptionCancelled, org.ID(),
				"Subscription cancelled",
				fmt.Sprintf("%s is back on the free plan. Teams are now limited to %d members.", org.Name(), result.MaxMembers),
			)
			n.Data = map[string]string{
				"subscription_id": e.AggregateID().String(),
				"plan_id":         string(e.PlanID),
			}
			if err := h.deps.Notifier.Send(ctx, m.UserID, n); err != nil {
				h.deps.Logger.Warn("cancellation notice not delivered",
					"organization_id", org.ID(),
					"user_id", m.UserID,
					"error", err,
				)
				errs = append(errs, fmt.Errorf("notify %s: %w", m.UserID, err))
			}
		}
	}
	h.deps.Logger.Info("subscription cancellation propagated",
		"organization_id", org.ID(),
		"teams", len(result.Teams),
		"notified", len(seen)-len(errs),
	)
	return errors.Join(errs...)
}
