package main

import (
	"github.com/spf13/cobra"

	"github.com/opsdesk/toolbox-admin/internal/app"
	"github.com/opsdesk/toolbox-admin/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Applies SQL migrations for sqlite3 and postgres. For mongo it ensures the unique indexes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			store, err := app.OpenStore(ctx, cfg, logger.For("migrate"))
			if err != nil {
				return err
			}
			log.Info().Str("db_driver", cfg.Database.Driver).Msg("schema up to date")
			return store.Close(ctx)
		},
	}
}
