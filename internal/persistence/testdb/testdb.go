// Package testdb opens a migrated SQLite pool in a test's temp directory.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence"
)

// New returns a pool over a fresh, fully migrated database that is closed
// when the test ends.
func New(t testing.TB) *db.Pool {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "buildtrack.db")}
	pool, cleanup, err := persistence.Provide(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = cleanup() })
	return pool
}

// SeedUser inserts a bare user row so foreign keys from projects resolve.
func SeedUser(t testing.TB, pool *db.Pool, id string) {
	t.Helper()
	_, err := pool.Writer().Exec(
		`INSERT INTO users (id, email, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		id, id+"@example.com")
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}
