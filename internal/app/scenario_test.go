package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingCommands "github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	identityCommands "github.com/felixgeelhaar/arena/internal/identity/application/commands"
	notifications "github.com/felixgeelhaar/arena/internal/notifications/domain"
	organizationCommands "github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	organizations "github.com/felixgeelhaar/arena/internal/organizations/domain"
	"github.com/felixgeelhaar/arena/internal/readmodel"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	teamCommands "github.com/felixgeelhaar/arena/internal/teams/application/commands"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/felixgeelhaar/arena/pkg/config"
)

func registerUser(t *testing.T, c *Container, i int) uuid.UUID {
	t.Helper()
	res, err := c.RegisterUserHandler.Handle(context.Background(), identityCommands.RegisterUserCommand{
		Email: fmt.Sprintf("rep%d@acme.test", i),
		Name:  fmt.Sprintf("Rep %d", i),
	})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)
	return res.Value.ID()
}

func changePlan(t *testing.T, c *Container, subscriptionID uuid.UUID, plan billing.PlanID) {
	t.Helper()
	res, err := c.ChangePlanHandler.Handle(context.Background(), billingCommands.ChangePlanCommand{
		SubscriptionID: subscriptionID,
		PlanID:         plan,
	})
	require.NoError(t, err)
	require.NoError(t, res.Propagation)
}

// addMembers registers n users starting at index first and adds them to
// the team.
func addMembers(t *testing.T, c *Container, teamID, actorID uuid.UUID, first, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := first; i < first+n; i++ {
		userID := registerUser(t, c, i)
		res, err := c.MembershipHandler.Add(context.Background(), teamCommands.AddMemberCommand{TeamID: teamID, UserID: userID, ActorID: actorID})
		require.NoError(t, err)
		require.NoError(t, res.Propagation)
		ids = append(ids, userID)
	}
	return ids
}

func loadTeam(t *testing.T, c *Container, id uuid.UUID) *teams.Team {
	t.Helper()
	team, err := c.Repos.Teams.FindByID(context.Background(), id)
	require.NoError(t, err)
	return team
}

// TestScenario_PlanLifecycleResizesTeams walks an organization from free to
// standard and premium while its team grows, back down to standard, and
// finally through cancellation.
func TestScenario_PlanLifecycleResizesTeams(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Notifiers = []string{config.NotifierLog, config.NotifierRedis}
	cfg.SnapshotsEnabled = true

	c, err := Wire(ctx, cfg, Infrastructure{Conn: dbtest.SQLite(t), Redis: client}, nil)
	require.NoError(t, err)
	defer c.Close()

	ownerID := registerUser(t, c, 0)
	created, err := c.CreateOrganizationHandler.Handle(ctx, organizationCommands.CreateOrganizationCommand{
		Name:    "Acme Sales",
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	require.NoError(t, created.Propagation)
	orgID := created.Value.Organization.ID()
	subscriptionID := created.Value.Subscription.ID()

	teamRes, err := c.CreateTeamHandler.Handle(ctx, teamCommands.CreateTeamCommand{
		OrganizationID: orgID,
		Name:           "Closers",
		OwnerID:        ownerID,
	})
	require.NoError(t, err)
	teamID := teamRes.Value.ID()
	assert.Equal(t, 3, teamRes.Value.MaxMembers())
	assert.Equal(t, 1, teamRes.Value.MemberCount())

	// Prime the read model so later changes must invalidate it.
	view, err := c.ReadModel.Get(ctx, readmodel.TeamKey(teamID), "dashboard")
	require.NoError(t, err)
	assert.Equal(t, 3, view.(readmodel.TeamView).MaxMembers)

	changePlan(t, c, subscriptionID, "standard")
	assert.Equal(t, 10, loadTeam(t, c, teamID).MaxMembers())

	_, stale, found := c.ReadModel.Read(readmodel.TeamKey(teamID), "dashboard")
	require.True(t, found)
	assert.True(t, stale, "plan change must invalidate the team view")
	c.Refresher.RefreshPending(ctx)
	refreshed, stale, _ := c.ReadModel.Read(readmodel.TeamKey(teamID), "dashboard")
	assert.False(t, stale)
	assert.Equal(t, 10, refreshed.(readmodel.TeamView).MaxMembers)

	members := append([]uuid.UUID{ownerID}, addMembers(t, c, teamID, ownerID, 1, 8)...)
	team := loadTeam(t, c, teamID)
	assert.Equal(t, 9, team.MemberCount())
	assert.Equal(t, 0, team.ExcessMemberCount())

	changePlan(t, c, subscriptionID, "premium")
	assert.Equal(t, 25, loadTeam(t, c, teamID).MaxMembers())

	members = append(members, addMembers(t, c, teamID, ownerID, 9, 15)...)
	team = loadTeam(t, c, teamID)
	assert.Equal(t, 24, team.MemberCount())
	assert.Equal(t, 0, team.ExcessMemberCount())

	changePlan(t, c, subscriptionID, "standard")
	team = loadTeam(t, c, teamID)
	assert.Equal(t, 10, team.MaxMembers())
	assert.Equal(t, 24, team.MemberCount())
	assert.Equal(t, 14, team.ExcessMemberCount())

	cancelled, err := c.CancelSubscriptionHandler.Handle(ctx, billingCommands.CancelSubscriptionCommand{SubscriptionID: subscriptionID})
	require.NoError(t, err)
	require.NoError(t, cancelled.Propagation)

	team = loadTeam(t, c, teamID)
	assert.Equal(t, 3, team.MaxMembers())
	assert.Equal(t, 24, team.MemberCount())
	assert.Equal(t, 21, team.ExcessMemberCount())

	org, err := c.Repos.Organizations.FindByID(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, billing.FreePlan, org.PlanID())
	assert.Equal(t, organizations.StatusInactive, org.Status())

	history := org.History()
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, billing.FreePlan, last.PlanID)
	assert.Equal(t, organizations.StatusInactive, last.Status)

	for _, userID := range members {
		inbox, err := c.Inbox.Inbox(ctx, userID, 10)
		require.NoError(t, err)
		require.Len(t, inbox, 1, "member %s", userID)
		assert.Equal(t, notifications.KindSubscriptionCancelled, inbox[0].Kind)
	}

	late := registerUser(t, c, 99)
	_, err = c.MembershipHandler.Add(ctx, teamCommands.AddMemberCommand{TeamID: teamID, UserID: late, ActorID: ownerID})
	assert.ErrorIs(t, err, teams.ErrMemberLimitReached)
}

func TestScenario_OptimisticRenameIsVisibleToWriterOnly(t *testing.T) {
	ctx := context.Background()
	c, err := Wire(ctx, testConfig(), Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.NoError(t, err)
	defer c.Close()

	ownerID := registerUser(t, c, 0)
	created, err := c.CreateOrganizationHandler.Handle(ctx, organizationCommands.CreateOrganizationCommand{Name: "Acme", OwnerID: ownerID})
	require.NoError(t, err)
	org := created.Value.Organization
	key := readmodel.OrganizationKey(org.ID())

	_, err = c.ReadModel.Get(ctx, key, "viewer")
	require.NoError(t, err)

	optimistic := readmodel.NewOrganizationView(org)
	optimistic.Name = "Acme Global"
	_, err = readmodel.Mutate(ctx, c.ReadModel, key, "editor", optimistic, func(ctx context.Context) (readmodel.OrganizationView, error) {
		v, _, _ := c.ReadModel.Read(key, "editor")
		assert.Equal(t, "Acme Global", v.(readmodel.OrganizationView).Name)
		v, _, _ = c.ReadModel.Read(key, "viewer")
		assert.Equal(t, "Acme", v.(readmodel.OrganizationView).Name)

		// A name over the limit fails validation and must be rolled back.
		_, err := c.RenameOrganizationHandler.Handle(ctx, organizationCommands.RenameOrganizationCommand{
			OrganizationID: org.ID(),
			Name:           strings.Repeat("x", organizations.MaxNameLength+1),
			ActorID:        ownerID,
		})
		return readmodel.OrganizationView{}, err
	})
	require.Error(t, err)

	v, _, found := c.ReadModel.Read(key, "editor")
	require.True(t, found)
	assert.Equal(t, "Acme", v.(readmodel.OrganizationView).Name)
}
