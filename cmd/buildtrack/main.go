// Package main is the BuildTrack entry point. `buildtrack serve` runs the API
// server; the other commands are operator tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/config"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configDir string

var rootCmd = &cobra.Command{
	Use:           "buildtrack",
	Short:         "BuildTrack construction project management backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, suggestCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithPath(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "buildtrack "+version)
	},
}
