package db

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildtrack.db")

	conn, err := OpenSQLite(path)
	require.NoError(t, err)
	status, err := Status(conn, DriverSQLite)
	require.NoError(t, err)
	assert.True(t, status.Pending)
	assert.Equal(t, uint(0), status.CurrentVersion)

	conn, err = OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn, DriverSQLite))

	// Running again is a no-op.
	conn, err = OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn, DriverSQLite))

	conn, err = OpenSQLite(path)
	require.NoError(t, err)
	status, err = Status(conn, DriverSQLite)
	require.NoError(t, err)
	assert.False(t, status.Pending)
	assert.False(t, status.Dirty)
	assert.Equal(t, status.LatestVersion, status.CurrentVersion)

	writer, err := OpenSQLite(path)
	require.NoError(t, err)
	reader, err := OpenSQLiteReader(path)
	require.NoError(t, err)
	pool := NewPool(sqlx.NewDb(writer, DriverSQLite), sqlx.NewDb(reader, DriverSQLite))
	t.Cleanup(func() { _ = pool.Close() })

	var tables []string
	require.NoError(t, pool.Reader().Select(&tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'organizations', 'projects', 'tasks') ORDER BY name`))
	assert.Equal(t, []string{"organizations", "projects", "tasks", "users"}, tables)
	assert.Equal(t, DriverSQLite, pool.Driver())
}

func TestMigrateUnknownDriver(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.Error(t, Migrate(conn, "mysql"))
}
