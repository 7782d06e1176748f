package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
)

func openTemp(t *testing.T) database.Connection {
	t.Helper()
	conn, err := database.Open(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "arena.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestOpen_RegistersDriver(t *testing.T) {
	conn := openTemp(t)

	assert.NoError(t, conn.Ping(context.Background()))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTemp(t)

	_, err := conn.Exec(ctx, `CREATE TABLE players (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	res, err := conn.Exec(ctx, `INSERT INTO players (id, name) VALUES (?, ?), (?, ?)`, "1", "Ada", "2", "Grace")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var name string
	require.NoError(t, conn.QueryRow(ctx, `SELECT name FROM players WHERE id = ?`, "2").Scan(&name))
	assert.Equal(t, "Grace", name)

	rows, err := conn.Query(ctx, `SELECT name FROM players ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Ada", "Grace"}, names)
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTemp(t)
	_, err := conn.Exec(ctx, `CREATE TABLE players (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO players (id) VALUES (?)`, "kept")
	require.NoError(t, err)

	nestedCtx, err := uow.Begin(txCtx)
	require.NoError(t, err)
	assert.Same(t, database.TxFromContext(txCtx), database.TxFromContext(nestedCtx))
	require.NoError(t, uow.Commit(nestedCtx))
	require.NoError(t, uow.Commit(txCtx))

	txCtx, err = uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO players (id) VALUES (?)`, "dropped")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, uow.Commit(ctx))
}
