package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdesk/toolbox-admin/internal/app"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := setup(ctx)
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.Background()); err != nil {
					log.Error().Err(err).Msg("close backends")
				}
			}()

			e := a.Router()
			errCh := make(chan error, 1)
			go func() {
				log.Info().
					Str("port", cfg.Port).
					Str("env", cfg.Env).
					Str("db_driver", cfg.Database.Driver).
					Msg("server starting")
				errCh <- e.Start(":" + cfg.Port)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
}
