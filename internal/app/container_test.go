package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notificationsInfra "github.com/felixgeelhaar/arena/internal/notifications/infrastructure"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/arena/pkg/config"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

const localUserID = "00000000-0000-0000-0000-000000000001"

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		UserID:                localUserID,
		Notifiers:             []string{config.NotifierLog},
		NotificationInboxSize: 50,
		SnapshotTTL:           time.Minute,
		RefreshInterval:       10 * time.Millisecond,
	}
}

func TestNewContainer_LocalMode(t *testing.T) {
	cfg := testConfig()
	cfg.LocalMode = true
	cfg.DatabaseDriver = string(database.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "arena.db")

	ctx := context.Background()
	c, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, database.DriverSQLite, c.Repos.Driver())
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Publisher)

	user, err := c.Repos.Users.FindByID(ctx, uuid.MustParse(localUserID))
	require.NoError(t, err)
	assert.Equal(t, "local@arena.local", user.Email().String())

	report := c.Health.Check(ctx)
	assert.Equal(t, observability.HealthStatusHealthy, report.Status)
	assert.Contains(t, report.Checks, "database")
}

func TestNewContainer_ReopenKeepsLocalUser(t *testing.T) {
	cfg := testConfig()
	cfg.LocalMode = true
	cfg.DatabaseDriver = string(database.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "arena.db")
	ctx := context.Background()

	first, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	first.Close()

	second, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	defer second.Close()

	_, err = second.Repos.Users.FindByID(ctx, uuid.MustParse(localUserID))
	require.NoError(t, err)
}

func TestWire_RedisBackedNotifierAndSnapshots(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Notifiers = []string{config.NotifierLog, config.NotifierRedis}
	cfg.SnapshotsEnabled = true

	c, err := Wire(context.Background(), cfg, Infrastructure{Conn: dbtest.SQLite(t), Redis: client}, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Inbox)
	senders, ok := c.Notifier.(notificationsInfra.MultiSender)
	require.True(t, ok)
	assert.Len(t, senders, 2)

	report := c.Health.Check(context.Background())
	assert.Contains(t, report.Checks, "redis")
}

func TestWire_SkipsTransportsWithoutBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Notifiers = []string{config.NotifierRedis, config.NotifierRabbitMQ}

	c, err := Wire(context.Background(), cfg, Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Inbox)
	_, isLog := c.Notifier.(*notificationsInfra.LogSender)
	assert.True(t, isLog)
}

func TestWire_InvalidPlanCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.PlanCatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Wire(context.Background(), cfg, Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan catalog")
}

func TestContainer_StartAndClose(t *testing.T) {
	c, err := Wire(context.Background(), testConfig(), Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Refresher.IsRunning())

	c.Close()
	assert.False(t, c.Refresher.IsRunning())
}

func TestContainer_StartWorker(t *testing.T) {
	c, err := Wire(context.Background(), testConfig(), Infrastructure{Conn: dbtest.SQLite(t)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.StartWorker(ctx))
	assert.True(t, c.Refresher.IsRunning())
	assert.True(t, c.Expiry.IsRunning())

	require.NoError(t, c.Expiry.RunOnce(ctx))
	assert.Equal(t, int64(1), c.Expiry.GetStats().Runs)

	c.Close()
	assert.False(t, c.Expiry.IsRunning())
}
