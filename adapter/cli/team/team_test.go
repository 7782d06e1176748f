package team

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/adapter/cli/clitest"
	internalApp "github.com/felixgeelhaar/arena/internal/app"
	"github.com/felixgeelhaar/arena/internal/readmodel"
	organizationCommands "github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	teamCommands "github.com/felixgeelhaar/arena/internal/teams/application/commands"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
)

func resetFlags() {
	createOwner = ""
	showJSON = false
	memberRole = string(teams.RoleMember)
}

func setup(t *testing.T) (*cli.App, *internalApp.Container, uuid.UUID) {
	t.Helper()
	resetFlags()
	a, c := clitest.New(t)
	res, err := a.CreateOrganizationHandler.Handle(context.Background(), organizationCommands.CreateOrganizationCommand{
		Name:    "Acme",
		OwnerID: a.CurrentUserID,
	})
	require.NoError(t, err)
	return a, c, res.Value.Organization.ID()
}

func createTeam(t *testing.T, a *cli.App, orgID uuid.UUID) uuid.UUID {
	t.Helper()
	res, err := a.CreateTeamHandler.Handle(context.Background(), teamCommands.CreateTeamCommand{
		OrganizationID: orgID,
		Name:           "Closers",
		OwnerID:        a.CurrentUserID,
	})
	require.NoError(t, err)
	return res.Value.ID()
}

func TestCreateCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	_, err := clitest.Run(createCmd, uuid.NewString(), "Closers")
	assert.ErrorIs(t, err, cli.ErrNotInitialized)
}

func TestCreateCmd(t *testing.T) {
	_, _, orgID := setup(t)

	out, err := clitest.Run(createCmd, orgID.String(), "Closers")
	require.NoError(t, err)
	assert.Contains(t, out, "Team created:")
	assert.Contains(t, out, "members: 1/3")
}

func TestCreateCmd_TeamLimitOnFreePlan(t *testing.T) {
	_, _, orgID := setup(t)

	_, err := clitest.Run(createCmd, orgID.String(), "Closers")
	require.NoError(t, err)
	_, err = clitest.Run(createCmd, orgID.String(), "Hunters")
	assert.ErrorIs(t, err, teams.ErrTeamLimitReached)
}

func TestAddMemberCmd_UpToPlanLimit(t *testing.T) {
	a, c, orgID := setup(t)
	teamID := createTeam(t, a, orgID)

	for i := 1; i <= 2; i++ {
		userID := clitest.Register(t, c, fmt.Sprintf("rep%d@acme.test", i))
		out, err := clitest.Run(addMemberCmd, teamID.String(), userID.String())
		require.NoError(t, err)
		assert.Contains(t, out, fmt.Sprintf("members: %d/3", i+1))
	}

	extra := clitest.Register(t, c, "rep3@acme.test")
	_, err := clitest.Run(addMemberCmd, teamID.String(), extra.String())
	assert.ErrorIs(t, err, teams.ErrMemberLimitReached)
}

func TestAddMemberCmd_InvalidRole(t *testing.T) {
	a, c, orgID := setup(t)
	teamID := createTeam(t, a, orgID)
	userID := clitest.Register(t, c, "rep@acme.test")
	memberRole = "captain"

	_, err := clitest.Run(addMemberCmd, teamID.String(), userID.String())
	assert.ErrorIs(t, err, teams.ErrUnknownRole)
}

func TestRemoveMemberCmd(t *testing.T) {
	a, c, orgID := setup(t)
	teamID := createTeam(t, a, orgID)
	userID := clitest.Register(t, c, "rep@acme.test")

	_, err := clitest.Run(addMemberCmd, teamID.String(), userID.String())
	require.NoError(t, err)

	out, err := clitest.Run(removeMemberCmd, teamID.String(), userID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "members: 1/3")

	_, err = clitest.Run(removeMemberCmd, teamID.String(), a.CurrentUserID.String())
	assert.ErrorIs(t, err, teams.ErrLastOwner)
}

func TestMemberCmds_KeepReadModelInStep(t *testing.T) {
	a, c, orgID := setup(t)
	teamID := createTeam(t, a, orgID)
	key := readmodel.TeamKey(teamID)

	userID := clitest.Register(t, c, "rep@acme.test")
	_, err := clitest.Run(addMemberCmd, teamID.String(), userID.String())
	require.NoError(t, err)

	v, stale, found := a.ReadModel.Read(key, "dashboard")
	require.True(t, found)
	assert.False(t, stale)
	assert.Equal(t, 2, v.(readmodel.TeamView).MemberCount)

	for i := 2; i <= 3; i++ {
		extra := clitest.Register(t, c, fmt.Sprintf("rep%d@acme.test", i))
		_, err = clitest.Run(addMemberCmd, teamID.String(), extra.String())
		if i == 3 {
			require.ErrorIs(t, err, teams.ErrMemberLimitReached)
		} else {
			require.NoError(t, err)
		}
	}
	v, _, _ = a.ReadModel.Read(key, a.ClientID())
	assert.Equal(t, 3, v.(readmodel.TeamView).MemberCount, "rejected add is rolled back for the writer")

	_, err = clitest.Run(removeMemberCmd, teamID.String(), userID.String())
	require.NoError(t, err)
	v, _, _ = a.ReadModel.Read(key, "dashboard")
	assert.Equal(t, 2, v.(readmodel.TeamView).MemberCount)
}

func TestShowCmd(t *testing.T) {
	a, _, orgID := setup(t)
	teamID := createTeam(t, a, orgID)

	out, err := clitest.Run(showCmd, teamID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Closers ("+teamID.String()+")")
	assert.Contains(t, out, a.CurrentUserID.String())
	assert.Contains(t, out, "owner")

	showJSON = true
	out, err = clitest.Run(showCmd, teamID.String())
	require.NoError(t, err)
	assert.Contains(t, out, `"max_members": 3`)
}

func TestShowCmd_UnknownTeam(t *testing.T) {
	setup(t)

	_, err := clitest.Run(showCmd, uuid.NewString())
	assert.ErrorIs(t, err, teams.ErrTeamNotFound)
}
