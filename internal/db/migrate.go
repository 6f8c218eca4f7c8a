package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// MigrationStatus describes how far a database is behind the embedded schema.
type MigrationStatus struct {
	CurrentVersion uint `json:"current_version"`
	LatestVersion  uint `json:"latest_version"`
	Dirty          bool `json:"dirty"`
	Pending        bool `json:"pending"`
}

// Migrate applies every pending migration for driver.
//
// The migrate drivers close the handle they are given, so conn must be a
// dedicated connection and is closed on return.
func Migrate(conn *sql.DB, driver string) error {
	m, err := newMigrator(conn, driver)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Status reports the applied and latest schema versions. Like Migrate, it
// closes conn on return.
func Status(conn *sql.DB, driver string) (*MigrationStatus, error) {
	m, err := newMigrator(conn, driver)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	src, err := migrationSource(driver)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	latest := latestVersion(src)
	return &MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latest,
		Dirty:          dirty,
		Pending:        version < latest,
	}, nil
}

func latestVersion(src source.Driver) uint {
	latest, err := src.First()
	if err != nil {
		return 0
	}
	for {
		next, err := src.Next(latest)
		if err != nil {
			return latest
		}
		latest = next
	}
}

func migrationSource(driver string) (source.Driver, error) {
	dir := "migrations/sqlite"
	if driver == DriverPostgres {
		dir = "migrations/postgres"
	}
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	return src, nil
}

func newMigrator(conn *sql.DB, driver string) (*migrate.Migrate, error) {
	var (
		target database.Driver
		name   string
		err    error
	)
	switch driver {
	case DriverSQLite:
		target, err = sqlite3.WithInstance(conn, &sqlite3.Config{})
		name = "sqlite3"
	case DriverPostgres:
		target, err = pgxmigrate.WithInstance(conn, &pgxmigrate.Config{})
		name = "pgx5"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("init migration driver: %w", err)
	}

	src, err := migrationSource(driver)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, name, target)
}

func closeMigrator(m *migrate.Migrate) {
	_, _ = m.Close()
}
