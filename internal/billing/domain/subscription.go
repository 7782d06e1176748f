package domain

import (
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// Subscription is an organization's paid (or free) plan and its billing
// lifecycle. An organization has at most one subscription that is not
// CANCELED.
type Subscription struct {
	sharedDomain.BaseAggregateRoot
	organizationID    uuid.UUID
	planID            PlanID
	status            Status
	startDate         time.Time
	endDate           *time.Time
	cancelAtPeriodEnd bool
}

// NewSubscription subscribes organizationID to planID. The subscription
// passes through CREATED and is returned ACTIVE.
func NewSubscription(organizationID uuid.UUID, planID PlanID) (*Subscription, error) {
	if organizationID == uuid.Nil {
		return nil, sharedDomain.Wrap(sharedDomain.KindValidation, "new subscription", fmt.Errorf("organization id is required"))
	}
	if planID == "" {
		return nil, ErrUnknownPlan
	}

	s := &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		organizationID:    organizationID,
		planID:            planID,
		status:            StatusCreated,
	}
	s.startDate = s.CreatedAt()

	if err := s.moveTo(StatusActive); err != nil {
		return nil, err
	}
	s.Record(newSubscriptionCreated(s))
	return s, nil
}

func (s *Subscription) OrganizationID() uuid.UUID { return s.organizationID }
func (s *Subscription) PlanID() PlanID            { return s.planID }
func (s *Subscription) Status() Status            { return s.status }
func (s *Subscription) StartDate() time.Time      { return s.startDate }
func (s *Subscription) EndDate() *time.Time       { return s.endDate }
func (s *Subscription) CancelAtPeriodEnd() bool   { return s.cancelAtPeriodEnd }

// IsOpen reports whether the subscription still governs its organization.
func (s *Subscription) IsOpen() bool { return !s.status.IsTerminal() }

func (s *Subscription) moveTo(next Status) error {
	if !s.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, next)
	}
	s.status = next
	return nil
}

// ChangePlan switches to planID. Switching to the current plan is a no-op
// and records nothing.
func (s *Subscription) ChangePlan(planID PlanID) error {
	if planID == "" {
		return ErrUnknownPlan
	}
	if s.status.IsTerminal() {
		return ErrSubscriptionCanceled
	}
	if planID == s.planID {
		return nil
	}

	old := s.planID
	s.planID = planID
	s.Record(&SubscriptionPlanChanged{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionPlanChanged),
		OrganizationID: s.organizationID,
		OldPlanID:      old,
		NewPlanID:      planID,
	})
	return nil
}

// ChangeStatus moves the subscription along the status graph. Moving to
// CANCELED cancels immediately.
func (s *Subscription) ChangeStatus(next Status, now time.Time) error {
	if next == StatusCanceled {
		return s.Cancel(now)
	}

	old := s.status
	if err := s.moveTo(next); err != nil {
		return err
	}
	s.Record(&SubscriptionStatusChanged{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionStatusChanged),
		OrganizationID: s.organizationID,
		PlanID:         s.planID,
		OldStatus:      old,
		NewStatus:      next,
	})
	return nil
}

// Cancel ends the subscription at now.
func (s *Subscription) Cancel(now time.Time) error {
	if err := s.moveTo(StatusCanceled); err != nil {
		return err
	}
	end := now.UTC()
	s.endDate = &end
	s.cancelAtPeriodEnd = false
	s.Record(&SubscriptionCancelled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionCancelled),
		OrganizationID: s.organizationID,
		PlanID:         s.planID,
		CancelledAt:    end,
	})
	return nil
}

// CurrentPeriodEnd returns the end of the monthly billing period that
// contains now.
func (s *Subscription) CurrentPeriodEnd(now time.Time) time.Time {
	end := s.startDate.AddDate(0, 1, 0)
	for !end.After(now) {
		end = end.AddDate(0, 1, 0)
	}
	return end
}

// ScheduleCancellation defers cancellation to at. The subscription keeps
// its plan and status until CompleteScheduledCancellation runs.
func (s *Subscription) ScheduleCancellation(at time.Time) error {
	if s.status.IsTerminal() {
		return ErrSubscriptionCanceled
	}
	if !s.status.CanTransitionTo(StatusCanceled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, StatusCanceled)
	}

	effective := at.UTC()
	s.endDate = &effective
	s.cancelAtPeriodEnd = true
	s.Record(&SubscriptionCancellationScheduled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionCancellationScheduled),
		OrganizationID: s.organizationID,
		EffectiveAt:    effective,
	})
	return nil
}

// RevokeScheduledCancellation keeps the subscription renewing.
func (s *Subscription) RevokeScheduledCancellation() error {
	if !s.cancelAtPeriodEnd {
		return ErrNoCancellationPending
	}
	s.cancelAtPeriodEnd = false
	s.endDate = nil
	s.Record(&SubscriptionCancellationRevoked{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), AggregateType, EventSubscriptionCancellationRevoked),
		OrganizationID: s.organizationID,
	})
	return nil
}

// CompleteScheduledCancellation cancels the subscription if a scheduled
// cancellation is due at now. It reports whether it cancelled.
func (s *Subscription) CompleteScheduledCancellation(now time.Time) (bool, error) {
	if !s.cancelAtPeriodEnd || s.endDate == nil || s.endDate.After(now) {
		return false, nil
	}
	if err := s.Cancel(*s.endDate); err != nil {
		return false, err
	}
	return true, nil
}

// SubscriptionState is the persisted form of a Subscription.
type SubscriptionState struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	PlanID            PlanID
	Status            Status
	StartDate         time.Time
	EndDate           *time.Time
	CancelAtPeriodEnd bool
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RehydrateSubscription restores a subscription from storage without
// recording events.
func RehydrateSubscription(st SubscriptionState) *Subscription {
	entity := sharedDomain.RehydrateBaseEntity(st.ID, st.CreatedAt, st.UpdatedAt)
	return &Subscription{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity, st.Version),
		organizationID:    st.OrganizationID,
		planID:            st.PlanID,
		status:            st.Status,
		startDate:         st.StartDate,
		endDate:           st.EndDate,
		cancelAtPeriodEnd: st.CancelAtPeriodEnd,
	}
}
