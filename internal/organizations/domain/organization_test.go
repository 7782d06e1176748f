package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

func newOrg(t *testing.T) *Organization {
	t.Helper()
	o, err := NewOrganization("  Acme Sales ", uuid.New())
	require.NoError(t, err)
	o.ClearPendingEvents()
	return o
}

func TestNewOrganization(t *testing.T) {
	owner := uuid.New()
	o, err := NewOrganization("Acme", owner)
	require.NoError(t, err)

	assert.Equal(t, billing.FreePlan, o.PlanID())
	assert.Equal(t, StatusActive, o.Status())
	assert.Empty(t, o.History())
	require.Len(t, o.PendingEvents(), 1)
	assert.Equal(t, owner, o.PendingEvents()[0].(*OrganizationCreated).OwnerID)

	_, err = NewOrganization(" ", owner)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = NewOrganization("Acme", uuid.Nil)
	assert.ErrorIs(t, err, ErrOwnerRequired)
}

func TestOrganization_SyncSubscription(t *testing.T) {
	o := newOrg(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	changed, err := o.SyncSubscription(billing.FreePlan, StatusActive, at)
	require.NoError(t, err)
	assert.True(t, changed, "first entry starts the history")
	assert.Empty(t, o.PendingEvents())
	assert.Len(t, o.History(), 1)

	changed, err = o.SyncSubscription("standard", StatusActive, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, o.PendingEvents(), 1)
	planChanged := o.PendingEvents()[0].(*OrganizationPlanChanged)
	assert.Equal(t, billing.FreePlan, planChanged.OldPlanID)
	assert.Equal(t, billing.PlanID("standard"), planChanged.NewPlanID)

	o.ClearPendingEvents()
	changed, err = o.SyncSubscription("standard", StatusActive, at.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, o.PendingEvents())
	assert.Len(t, o.History(), 2)
}

func TestOrganization_RevertToFree(t *testing.T) {
	o := newOrg(t)
	now := time.Now()
	_, err := o.SyncSubscription("premium", StatusActive, now)
	require.NoError(t, err)
	o.ClearPendingEvents()

	changed, err := o.RevertToFree(now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, billing.FreePlan, o.PlanID())
	assert.Equal(t, StatusInactive, o.Status())

	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, HistoryEntry{PlanID: billing.FreePlan, Status: StatusInactive, ChangedAt: now.UTC()}, history[1])

	types := []string{o.PendingEvents()[0].EventType(), o.PendingEvents()[1].EventType()}
	assert.Equal(t, []string{EventOrganizationPlanChanged, EventOrganizationStatusChanged}, types)

	changed, err = o.RevertToFree(now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestOrganization_SyncSubscriptionRejectsUnknownStatus(t *testing.T) {
	o := newOrg(t)
	_, err := o.SyncSubscription(billing.FreePlan, "archived", time.Now())
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Empty(t, o.History())
}

func TestStatusForSubscription(t *testing.T) {
	cases := map[billing.Status]Status{
		billing.StatusActive:   StatusActive,
		billing.StatusPaused:   StatusPaused,
		billing.StatusPastDue:  StatusActive,
		billing.StatusCanceled: StatusInactive,
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusForSubscription(in), string(in))
	}
}

func TestOrganization_Rename(t *testing.T) {
	o := newOrg(t)
	require.NoError(t, o.Rename("Acme Sales"))
	assert.Empty(t, o.PendingEvents())

	require.NoError(t, o.Rename("Acme Global"))
	assert.Equal(t, "Acme Global", o.Name())
	assert.Equal(t, EventOrganizationRenamed, o.PendingEvents()[0].EventType())

	assert.ErrorIs(t, o.Rename(""), ErrEmptyName)
}
