// Package dbtest opens migrated throwaway databases for repository tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/migrations"
)

// SQLite returns a migrated SQLite database in t's temp dir. It is closed
// when the test ends.
func SQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := database.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "arena.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}
