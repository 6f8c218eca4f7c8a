// Package persistence opens the configured database, applies migrations and
// hands out the read/write pool used by every store.
package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/db"
)

// Provide opens the database described by cfg, migrates it to the latest
// schema, and returns the pool plus a cleanup func.
func Provide(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*db.Pool, func() error, error) {
	if cfg.IsPostgres() {
		return providePostgres(ctx, cfg, log)
	}
	return provideSQLite(cfg.Path, log)
}

func provideSQLite(path string, log *logger.Logger) (*db.Pool, func() error, error) {
	migrationConn, err := db.OpenSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Migrate(migrationConn, db.DriverSQLite); err != nil {
		return nil, nil, err
	}

	writer, err := db.OpenSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	reader, err := db.OpenSQLiteReader(path)
	if err != nil {
		_ = writer.Close()
		return nil, nil, err
	}

	pool := db.NewPool(sqlx.NewDb(writer, db.DriverSQLite), sqlx.NewDb(reader, db.DriverSQLite))
	if log != nil {
		log.Info("Database initialized", zap.String("db_path", path), zap.String("db_driver", "sqlite"))
	}
	cleanup := func() error {
		// Refreshes planner statistics; cheap on every close.
		_, _ = writer.Exec("PRAGMA optimize")
		return pool.Close()
	}
	return pool, cleanup, nil
}

func providePostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*db.Pool, func() error, error) {
	migrationConn, err := db.OpenPostgres(ctx, cfg.DSN(), 2, 1)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(migrationConn, db.DriverPostgres); err != nil {
		return nil, nil, err
	}

	conn, err := db.OpenPostgres(ctx, cfg.DSN(), cfg.MaxConns, cfg.MinConns)
	if err != nil {
		return nil, nil, err
	}
	shared := sqlx.NewDb(conn, db.DriverPostgres)
	pool := db.NewPool(shared, shared)
	if log != nil {
		log.Info("Database initialized",
			zap.String("db_host", cfg.Host),
			zap.String("db_name", cfg.DBName),
			zap.String("db_driver", "postgres"))
	}
	return pool, pool.Close, nil
}

// MigrationStatus opens a dedicated connection and reports the schema state.
func MigrationStatus(ctx context.Context, cfg config.DatabaseConfig) (*db.MigrationStatus, error) {
	conn, driver, err := openDedicated(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return db.Status(conn, driver)
}

// MigrateUp applies pending migrations without opening the serving pool.
func MigrateUp(ctx context.Context, cfg config.DatabaseConfig) error {
	conn, driver, err := openDedicated(ctx, cfg)
	if err != nil {
		return err
	}
	return db.Migrate(conn, driver)
}

func openDedicated(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, string, error) {
	if cfg.IsPostgres() {
		conn, err := db.OpenPostgres(ctx, cfg.DSN(), 2, 1)
		return conn, db.DriverPostgres, err
	}
	conn, err := db.OpenSQLite(cfg.Path)
	return conn, db.DriverSQLite, err
}
