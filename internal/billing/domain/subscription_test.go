package domain

import (
	"testing"
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActive(t *testing.T, plan PlanID) *Subscription {
	t.Helper()
	s, err := NewSubscription(uuid.New(), plan)
	require.NoError(t, err)
	s.ClearPendingEvents()
	return s
}

func TestNewSubscription(t *testing.T) {
	orgID := uuid.New()

	s, err := NewSubscription(orgID, FreePlan)

	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, FreePlan, s.PlanID())
	assert.True(t, s.IsOpen())
	assert.False(t, s.StartDate().IsZero())

	events := s.PendingEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*SubscriptionCreated)
	require.True(t, ok)
	assert.Equal(t, EventSubscriptionCreated, created.EventType())
	assert.Equal(t, orgID, created.OrganizationID)
	assert.Equal(t, StatusActive, created.Status)

	t.Run("requires organization", func(t *testing.T) {
		_, err := NewSubscription(uuid.Nil, FreePlan)
		assert.True(t, sharedDomain.IsKind(err, sharedDomain.KindValidation))
	})

	t.Run("requires plan", func(t *testing.T) {
		_, err := NewSubscription(orgID, "")
		assert.ErrorIs(t, err, ErrUnknownPlan)
	})
}

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusCreated, StatusActive, StatusPaused, StatusPastDue, StatusCanceled}
	allowed := map[Status]map[Status]bool{
		StatusCreated:  {StatusActive: true},
		StatusActive:   {StatusPaused: true, StatusPastDue: true, StatusCanceled: true},
		StatusPaused:   {StatusActive: true, StatusCanceled: true},
		StatusPastDue:  {StatusActive: true, StatusCanceled: true},
		StatusCanceled: {},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusPastDue.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("past_due")
	require.NoError(t, err)
	assert.Equal(t, StatusPastDue, s)

	_, err = ParseStatus("trialing")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestSubscription_ChangePlan(t *testing.T) {
	s := newActive(t, FreePlan)

	require.NoError(t, s.ChangePlan("standard"))
	assert.Equal(t, PlanID("standard"), s.PlanID())
	require.Len(t, s.PendingEvents(), 1)
	changed := s.PendingEvents()[0].(*SubscriptionPlanChanged)
	assert.Equal(t, FreePlan, changed.OldPlanID)
	assert.Equal(t, PlanID("standard"), changed.NewPlanID)

	t.Run("same plan records nothing", func(t *testing.T) {
		s.ClearPendingEvents()
		require.NoError(t, s.ChangePlan("standard"))
		assert.Empty(t, s.PendingEvents())
	})

	t.Run("canceled subscription rejects plan change", func(t *testing.T) {
		c := newActive(t, "premium")
		require.NoError(t, c.Cancel(time.Now()))
		err := c.ChangePlan("standard")
		assert.ErrorIs(t, err, ErrSubscriptionCanceled)
		assert.True(t, sharedDomain.IsKind(err, sharedDomain.KindValidation))
	})
}

func TestSubscription_ChangeStatus(t *testing.T) {
	s := newActive(t, "standard")

	require.NoError(t, s.ChangeStatus(StatusPastDue, time.Now()))
	require.NoError(t, s.ChangeStatus(StatusActive, time.Now()))
	require.NoError(t, s.ChangeStatus(StatusPaused, time.Now()))

	events := s.PendingEvents()
	require.Len(t, events, 3)
	last := events[2].(*SubscriptionStatusChanged)
	assert.Equal(t, StatusActive, last.OldStatus)
	assert.Equal(t, StatusPaused, last.NewStatus)

	t.Run("invalid transition", func(t *testing.T) {
		err := s.ChangeStatus(StatusPastDue, time.Now())
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusPaused, s.Status())
		assert.Len(t, s.PendingEvents(), 3)
	})

	t.Run("canceled target cancels", func(t *testing.T) {
		s.ClearPendingEvents()
		require.NoError(t, s.ChangeStatus(StatusCanceled, time.Now()))
		require.Len(t, s.PendingEvents(), 1)
		_, ok := s.PendingEvents()[0].(*SubscriptionCancelled)
		assert.True(t, ok)
	})

	t.Run("nothing leaves canceled", func(t *testing.T) {
		err := s.ChangeStatus(StatusActive, time.Now())
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSubscription_Cancel(t *testing.T) {
	s := newActive(t, "premium")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Cancel(now))

	assert.Equal(t, StatusCanceled, s.Status())
	assert.False(t, s.IsOpen())
	require.NotNil(t, s.EndDate())
	assert.Equal(t, now, *s.EndDate())
	cancelled := s.PendingEvents()[0].(*SubscriptionCancelled)
	assert.Equal(t, PlanID("premium"), cancelled.PlanID)

	assert.ErrorIs(t, s.Cancel(now), ErrInvalidTransition)
}

func TestSubscription_ScheduledCancellation(t *testing.T) {
	s := newActive(t, "standard")
	periodEnd := s.CurrentPeriodEnd(time.Now())
	assert.True(t, periodEnd.After(time.Now()))

	require.NoError(t, s.ScheduleCancellation(periodEnd))
	assert.True(t, s.CancelAtPeriodEnd())
	assert.Equal(t, StatusActive, s.Status())

	done, err := s.CompleteScheduledCancellation(periodEnd.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.CompleteScheduledCancellation(periodEnd)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StatusCanceled, s.Status())
	assert.False(t, s.CancelAtPeriodEnd())

	events := s.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventSubscriptionCancellationScheduled, events[0].EventType())
	assert.Equal(t, EventSubscriptionCancelled, events[1].EventType())
}

func TestSubscription_RevokeScheduledCancellation(t *testing.T) {
	s := newActive(t, "standard")
	assert.ErrorIs(t, s.RevokeScheduledCancellation(), ErrNoCancellationPending)

	require.NoError(t, s.ScheduleCancellation(time.Now().Add(time.Hour)))
	require.NoError(t, s.RevokeScheduledCancellation())

	assert.False(t, s.CancelAtPeriodEnd())
	assert.Nil(t, s.EndDate())
	done, err := s.CompleteScheduledCancellation(time.Now().Add(2 * time.Hour))
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSubscription_CurrentPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	s := RehydrateSubscription(SubscriptionState{ID: uuid.New(), StartDate: start, Status: StatusActive, Version: 1})

	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), s.CurrentPeriodEnd(start))
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), s.CurrentPeriodEnd(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, s.Version())
	assert.Empty(t, s.PendingEvents())
}
