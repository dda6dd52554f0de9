package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opsdesk/toolbox-admin/internal/infrastructure/config"
	"github.com/opsdesk/toolbox-admin/pkg/logger"
)

const serviceName = "toolbox-admin"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "toolbox",
		Short:         "Toolbox administration server",
		Long:          "Serves the toolbox admin web application and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateAdminCmd(),
	)
	return rootCmd
}

// setup loads the configuration from the environment and initialises the
// process logger from its profile.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	profile := cfg.Profile()
	log := logger.Init(logger.Options{
		Level:   profile.LogLevel,
		Pretty:  profile.PrettyLogs,
		Service: serviceName,
	})
	return cfg, log, nil
}
