package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/security"
)

func TestDefault(t *testing.T) {
	c := Default()

	for plan, want := range map[domain.PlanID]int{"free": 3, "standard": 10, "premium": 25} {
		got, err := c.Limit(plan, domain.MetricTeamMembers)
		require.NoError(t, err)
		assert.Equal(t, want, got, plan)
	}

	premium, err := c.Plan("premium")
	require.NoError(t, err)
	assert.Equal(t, domain.Unlimited, premium.Limit(domain.MetricTeams))
	assert.True(t, premium.HasFeature("api_access"))
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: free
    limits: {team_members: 5}
  - id: enterprise
    features: [sso]
    limits: {team_members: 500}
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Plans(), 2)
	limit, err := c.Limit("free", domain.MetricTeamMembers)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	jsonPath := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"plans": []}`), 0o600))
	_, err = Load(jsonPath)
	assert.ErrorIs(t, err, security.ErrUnsupportedExt)

	_, err = Parse([]byte("plans: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("plans:\n  - id: standard\n    limits: {team_members: 10}\n"))
	assert.Error(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Plans(), 3)
}
