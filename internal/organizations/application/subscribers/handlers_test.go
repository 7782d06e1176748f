package subscribers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingCommands "github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/billing/infrastructure/catalog"
	billingPersistence "github.com/felixgeelhaar/arena/internal/billing/infrastructure/persistence"
	notifications "github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/domain"
	"github.com/felixgeelhaar/arena/internal/organizations/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
	teamsPersistence "github.com/felixgeelhaar/arena/internal/teams/infrastructure/persistence"
)

type inbox struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]notifications.Notification
	fail map[uuid.UUID]bool
}

func (i *inbox) Send(_ context.Context, userID uuid.UUID, n notifications.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fail[userID] {
		return errors.New("mailbox full")
	}
	i.sent[userID] = append(i.sent[userID], n)
	return nil
}

type world struct {
	conn          database.Connection
	orgs          *persistence.OrganizationRepository
	teams         *teamsPersistence.TeamRepository
	subscriptions *billingPersistence.SubscriptionRepository
	bus           *eventbus.Bus
	inbox         *inbox

	create     *billingCommands.CreateSubscriptionHandler
	changePlan *billingCommands.ChangePlanHandler
	status     *billingCommands.ChangeStatusHandler
	cancel     *billingCommands.CancelSubscriptionHandler
}

func newWorld(t *testing.T) *world {
	t.Helper()
	conn := dbtest.SQLite(t)
	uow := database.NewUnitOfWork(conn)
	cat := catalog.Default()
	w := &world{
		conn:          conn,
		orgs:          persistence.NewOrganizationRepository(conn),
		teams:         teamsPersistence.NewTeamRepository(conn),
		subscriptions: billingPersistence.NewSubscriptionRepository(conn),
		bus:           eventbus.New(nil),
		inbox:         &inbox{sent: map[uuid.UUID][]notifications.Notification{}, fail: map[uuid.UUID]bool{}},
	}
	for _, c := range NewConsumers(Dependencies{
		Organizations: w.orgs,
		Propagator:    NewLimitPropagator(cat, w.teams, uow, w.bus, nil),
		Notifier:      w.inbox,
		UnitOfWork:    uow,
		Publisher:     w.bus,
	}) {
		w.bus.RegisterConsumer(c)
	}
	w.create = billingCommands.NewCreateSubscriptionHandler(w.subscriptions, cat, uow, w.bus)
	w.changePlan = billingCommands.NewChangePlanHandler(w.subscriptions, cat, uow, w.bus)
	w.status = billingCommands.NewChangeStatusHandler(w.subscriptions, uow, w.bus)
	w.cancel = billingCommands.NewCancelSubscriptionHandler(w.subscriptions, uow, w.bus)
	return w
}

// seed stores an organization with one team of size members, capped at
// maxMembers, bypassing the member limit.
func (w *world) seed(t *testing.T, maxMembers int, sizes ...int) (*domain.Organization, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	org, err := domain.NewOrganization("Acme", uuid.New())
	require.NoError(t, err)
	require.NoError(t, w.orgs.Save(ctx, org))

	var teamIDs []uuid.UUID
	for i, size := range sizes {
		team, err := teams.NewTeam(org.ID(), fmt.Sprintf("team-%d", i), billing.Unlimited, uuid.New())
		require.NoError(t, err)
		for j := 1; j < size; j++ {
			require.NoError(t, team.AddMember(uuid.New(), teams.RoleMember, team.CreatedAt()))
		}
		_, err = team.ApplyMemberLimit(maxMembers)
		require.NoError(t, err)
		require.NoError(t, w.teams.Save(ctx, team))
		teamIDs = append(teamIDs, team.ID())
	}
	return org, teamIDs
}

func (w *world) team(t *testing.T, id uuid.UUID) *teams.Team {
	t.Helper()
	team, err := w.teams.FindByID(context.Background(), id)
	require.NoError(t, err)
	return team
}

func (w *world) org(t *testing.T, id uuid.UUID) *domain.Organization {
	t.Helper()
	org, err := w.orgs.FindByID(context.Background(), id)
	require.NoError(t, err)
	return org
}

func TestSubscriptionCreated_SyncsOrganizationAndTeams(t *testing.T) {
	w := newWorld(t)
	org, teamIDs := w.seed(t, 3, 2)

	res, err := w.create.Handle(context.Background(), billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID(), PlanID: "standard"})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)

	stored := w.org(t, org.ID())
	assert.Equal(t, billing.PlanID("standard"), stored.PlanID())
	require.Len(t, stored.History(), 1)
	assert.Equal(t, domain.StatusActive, stored.History()[0].Status)
	assert.Equal(t, 10, w.team(t, teamIDs[0]).MaxMembers())
}

func TestSubscriptionPlanChanged_ResizesEveryTeam(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 1, 3)
	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID()})
	require.NoError(t, err)

	res, err := w.changePlan.Handle(ctx, billingCommands.ChangePlanCommand{SubscriptionID: sub.Value.ID(), PlanID: "premium"})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)

	for _, id := range teamIDs {
		assert.Equal(t, 25, w.team(t, id).MaxMembers())
	}
	stored := w.org(t, org.ID())
	assert.Equal(t, billing.PlanID("premium"), stored.PlanID())
	assert.Len(t, stored.History(), 2)
}

func TestSubscriptionPlanChanged_RedeliveryIsIdempotent(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 2)
	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID()})
	require.NoError(t, err)

	var captured *billing.SubscriptionPlanChanged
	w.bus.Subscribe(billing.EventSubscriptionPlanChanged, "capture", func(_ context.Context, e sharedDomain.DomainEvent) error {
		captured = e.(*billing.SubscriptionPlanChanged)
		return nil
	})
	_, err = w.changePlan.Handle(ctx, billingCommands.ChangePlanCommand{SubscriptionID: sub.Value.ID(), PlanID: "standard"})
	require.NoError(t, err)
	require.NotNil(t, captured)

	before := w.team(t, teamIDs[0])
	orgBefore := w.org(t, org.ID())

	require.NoError(t, w.bus.Publish(ctx, captured))

	after := w.team(t, teamIDs[0])
	assert.Equal(t, 10, after.MaxMembers())
	assert.Equal(t, before.Version(), after.Version(), "unchanged team is not rewritten")
	assert.Equal(t, orgBefore.Version(), w.org(t, org.ID()).Version())
	assert.Len(t, w.org(t, org.ID()).History(), 2)
}

func TestSubscriptionStatusChanged_MapsStatus(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 2)
	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID()})
	require.NoError(t, err)

	steps := []struct {
		status billing.Status
		want   domain.Status
	}{
		{billing.StatusPaused, domain.StatusPaused},
		{billing.StatusActive, domain.StatusActive},
		{billing.StatusPastDue, domain.StatusActive},
	}
	for _, step := range steps {
		res, err := w.status.Handle(ctx, billingCommands.ChangeStatusCommand{SubscriptionID: sub.Value.ID(), Status: step.status})
		require.NoError(t, err, step.status)
		require.NoError(t, res.Propagation)
		assert.Equal(t, step.want, w.org(t, org.ID()).Status(), step.status)
	}

	assert.Len(t, w.org(t, org.ID()).History(), 3, "past_due maps onto the same organization state as active")
	assert.Equal(t, 3, w.team(t, teamIDs[0]).MaxMembers())
}

func TestSubscriptionStatusChanged_RedeliveryKeepsCurrentPlan(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 2)
	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID(), PlanID: "standard"})
	require.NoError(t, err)

	var pastDue *billing.SubscriptionStatusChanged
	w.bus.Subscribe(billing.EventSubscriptionStatusChanged, "capture", func(_ context.Context, e sharedDomain.DomainEvent) error {
		pastDue = e.(*billing.SubscriptionStatusChanged)
		return nil
	})
	_, err = w.status.Handle(ctx, billingCommands.ChangeStatusCommand{SubscriptionID: sub.Value.ID(), Status: billing.StatusPastDue})
	require.NoError(t, err)
	require.NotNil(t, pastDue)
	require.Equal(t, billing.PlanID("standard"), pastDue.PlanID)

	res, err := w.changePlan.Handle(ctx, billingCommands.ChangePlanCommand{SubscriptionID: sub.Value.ID(), PlanID: "premium"})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)

	require.NoError(t, w.bus.Publish(ctx, pastDue))

	stored := w.org(t, org.ID())
	assert.Equal(t, billing.PlanID("premium"), stored.PlanID())
	assert.Equal(t, 25, w.team(t, teamIDs[0]).MaxMembers())
}

func TestSubscriptionCancelled_RevertsAndNotifiesEachMemberOnce(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 4, 2)

	shared := uuid.New()
	for _, id := range teamIDs {
		team := w.team(t, id)
		_, err := team.ApplyMemberLimit(billing.Unlimited)
		require.NoError(t, err)
		require.NoError(t, team.AddMember(shared, teams.RoleMember, team.CreatedAt()))
		require.NoError(t, w.teams.Save(ctx, team))
	}

	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID(), PlanID: "premium"})
	require.NoError(t, err)
	require.Equal(t, 25, w.team(t, teamIDs[0]).MaxMembers())

	var cancelled *billing.SubscriptionCancelled
	w.bus.Subscribe(billing.EventSubscriptionCancelled, "capture", func(_ context.Context, e sharedDomain.DomainEvent) error {
		cancelled = e.(*billing.SubscriptionCancelled)
		return nil
	})
	res, err := w.cancel.Handle(ctx, billingCommands.CancelSubscriptionCommand{SubscriptionID: sub.Value.ID()})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)

	stored := w.org(t, org.ID())
	assert.Equal(t, billing.FreePlan, stored.PlanID())
	assert.Equal(t, domain.StatusInactive, stored.Status())
	history := stored.History()
	assert.Equal(t, domain.StatusInactive, history[len(history)-1].Status)

	first := w.team(t, teamIDs[0])
	assert.Equal(t, 3, first.MaxMembers())
	assert.Equal(t, 5, first.MemberCount())
	assert.Equal(t, 2, first.ExcessMemberCount())

	// 5 + 3 members, one of them on both teams.
	assert.Len(t, w.inbox.sent, 7)
	for _, got := range w.inbox.sent {
		assert.Len(t, got, 1)
	}
	assert.Equal(t, notifications.KindSubscriptionCancelled, w.inbox.sent[shared][0].Kind)

	require.NoError(t, w.bus.Publish(ctx, cancelled))
	assert.Len(t, w.inbox.sent[shared], 1, "re-delivery does not notify again")
	assert.Len(t, w.org(t, org.ID()).History(), len(history))
}

func TestSubscriptionCancelled_NotificationFailuresAreReported(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 2)
	team := w.team(t, teamIDs[0])
	for _, m := range team.Members() {
		w.inbox.fail[m.UserID] = true
		break
	}

	sub, err := w.create.Handle(ctx, billingCommands.CreateSubscriptionCommand{OrganizationID: org.ID()})
	require.NoError(t, err)

	res, err := w.cancel.Handle(ctx, billingCommands.CancelSubscriptionCommand{SubscriptionID: sub.Value.ID()})
	require.NoError(t, err, "the cancellation itself commits")

	failures := eventbus.Failures(res.Propagation)
	require.Len(t, failures, 1)
	assert.Equal(t, "organizations.subscription-cancelled", failures[0].Handler)
	assert.Equal(t, domain.StatusInactive, w.org(t, org.ID()).Status())
	assert.Len(t, w.inbox.sent, 1)
}

type failingTeams struct {
	teams.TeamRepository
	failOn uuid.UUID
}

func (f failingTeams) Save(ctx context.Context, t *teams.Team) error {
	if t.ID() == f.failOn {
		return errors.New("disk full")
	}
	return f.TeamRepository.Save(ctx, t)
}

func TestLimitPropagator_ContinuesPastFailures(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	org, teamIDs := w.seed(t, 3, 1, 1, 1)

	p := NewLimitPropagator(catalog.Default(), failingTeams{TeamRepository: w.teams, failOn: teamIDs[1]}, database.NewUnitOfWork(w.conn), nil, nil)
	result, err := p.Propagate(ctx, org.ID(), "standard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), teamIDs[1].String())
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 10, w.team(t, teamIDs[0]).MaxMembers())
	assert.Equal(t, 3, w.team(t, teamIDs[1]).MaxMembers())
	assert.Equal(t, 10, w.team(t, teamIDs[2]).MaxMembers())

	_, err = p.Propagate(ctx, org.ID(), "gold")
	assert.ErrorIs(t, err, billing.ErrUnknownPlan)
}
