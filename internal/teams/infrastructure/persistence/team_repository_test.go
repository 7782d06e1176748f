package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/arena/internal/teams/domain"
)

func TestTeamRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository(dbtest.SQLite(t))
	orgID := uuid.New()

	team, err := domain.NewTeam(orgID, "Closers", 10, uuid.New())
	require.NoError(t, err)
	rep := uuid.New()
	require.NoError(t, team.AddMember(rep, domain.RoleManager, time.Now().Add(time.Second)))
	require.NoError(t, repo.Save(ctx, team))

	loaded, err := repo.FindByID(ctx, team.ID())
	require.NoError(t, err)
	assert.Equal(t, 10, loaded.MaxMembers())
	require.Len(t, loaded.Members(), 2)
	assert.Equal(t, domain.RoleOwner, loaded.Members()[0].Role)
	assert.True(t, loaded.HasMember(rep))

	require.NoError(t, loaded.RemoveMember(rep))
	_, err = loaded.ApplyMemberLimit(3)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.FindByID(ctx, team.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, again.MaxMembers())
	assert.Equal(t, 1, again.MemberCount())
	assert.Equal(t, 2, again.Version())
}

func TestTeamRepository_FindByOrganization(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository(dbtest.SQLite(t))
	orgID := uuid.New()

	for _, name := range []string{"East", "West"} {
		team, err := domain.NewTeam(orgID, name, 3, uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, team))
	}
	other, err := domain.NewTeam(uuid.New(), "Elsewhere", 3, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	teams, err := repo.FindByOrganization(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	for _, team := range teams {
		assert.Equal(t, 1, team.MemberCount())
	}

	none, err := repo.FindByOrganization(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTeamRepository_StaleWriteAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamRepository(dbtest.SQLite(t))

	team, err := domain.NewTeam(uuid.New(), "Closers", 3, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, team))

	stale, err := repo.FindByID(ctx, team.ID())
	require.NoError(t, err)
	_, err = team.ApplyMemberLimit(10)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, team))

	_, err = stale.ApplyMemberLimit(25)
	require.NoError(t, err)
	assert.True(t, sharedDomain.IsKind(repo.Save(ctx, stale), sharedDomain.KindConcurrencyConflict))

	require.NoError(t, repo.Delete(ctx, team.ID()))
	_, err = repo.FindByID(ctx, team.ID())
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
