package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := persistence.MigrateUp(cmd.Context(), cfg.Database); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current and latest schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		status, err := persistence.MigrationStatus(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Current version: %d\n", status.CurrentVersion)
		fmt.Fprintf(out, "Latest version:  %d\n", status.LatestVersion)
		if status.Dirty {
			fmt.Fprintln(out, "WARNING: database is dirty (a migration failed partway)")
		}
		if status.Pending {
			fmt.Fprintln(out, "Pending migrations: run `buildtrack migrate up`")
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}
