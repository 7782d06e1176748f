package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// AggregateType is the aggregate type carried by subscription events.
const AggregateType = "Subscription"

const (
	EventSubscriptionCreated               = "billing.subscription.created"
	EventSubscriptionStatusChanged         = "billing.subscription.status_changed"
	EventSubscriptionPlanChanged           = "billing.subscription.plan_changed"
	EventSubscriptionCancelled             = "billing.subscription.cancelled"
	EventSubscriptionCancellationScheduled = "billing.subscription.cancellation_scheduled"
	EventSubscriptionCancellationRevoked   = "billing.subscription.cancellation_revoked"
)

// SubscriptionCreated is emitted once, when an organization subscribes.
type SubscriptionCreated struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	PlanID         PlanID    `json:"plan_id"`
	Status         Status    `json:"status"`
	StartDate      time.Time `json:"start_date"`
}

func newSubscriptionCreated(s *Subscription) *SubscriptionCreated {
	return &SubscriptionCreated{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionCreated),
		OrganizationID: s.organizationID,
		PlanID:         s.planID,
		Status:         s.status,
		StartDate:      s.startDate,
	}
}

// SubscriptionStatusChanged is emitted for every non-cancelling transition.
type SubscriptionStatusChanged struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	PlanID         PlanID    `json:"plan_id"`
	OldStatus      Status    `json:"old_status"`
	NewStatus      Status    `json:"new_status"`
}

// SubscriptionPlanChanged is emitted when the plan actually changes.
type SubscriptionPlanChanged struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	OldPlanID      PlanID    `json:"old_plan_id"`
	NewPlanID      PlanID    `json:"new_plan_id"`
}

// SubscriptionCancelled is emitted when the subscription reaches CANCELED.
type SubscriptionCancelled struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	PlanID         PlanID    `json:"plan_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// SubscriptionCancellationScheduled is emitted when cancellation is
// deferred to the end of the billing period.
type SubscriptionCancellationScheduled struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	EffectiveAt    time.Time `json:"effective_at"`
}

// SubscriptionCancellationRevoked is emitted when a scheduled cancellation
// is withdrawn before it takes effect.
type SubscriptionCancellationRevoked struct {
	sharedDomain.BaseEvent
	OrganizationID uuid.UUID `json:"organization_id"`
}
