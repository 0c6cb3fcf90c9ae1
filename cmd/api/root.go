package main

import (
	"log/slog"

	"github.com/geocoder89/eventreg/internal/config"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "eventreg",
	Short:         "Event registration API",
	Long:          `Serves the event registration HTTP API and manages its database schema.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup loads configuration and installs the process-wide logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	return cfg, log, nil
}
