package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/toolbox-admin/internal/app"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
	"github.com/opsdesk/toolbox-admin/internal/core/service"
	"github.com/opsdesk/toolbox-admin/pkg/logger"
)

type createAdminOptions struct {
	email     string
	name      string
	password  string
	firstName string
	lastName  string
}

func newCreateAdminCmd() *cobra.Command {
	var opts createAdminOptions

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Creates an admin account. Admins are otherwise only created from the admin area.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, _, err := setup(ctx)
			if err != nil {
				return err
			}

			store, err := app.OpenStore(ctx, cfg, logger.For("store"))
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			users := service.NewUserService(store, logger.For("users"))
			u, err := createAdmin(ctx, users, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "admin email address")
	cmd.Flags().StringVar(&opts.name, "name", "", "unique account name")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, users ports.UserService, opts createAdminOptions) (*domain.User, error) {
	return users.Create(ctx, ports.CreateUserInput{
		Email:     opts.email,
		Name:      opts.name,
		FirstName: opts.firstName,
		LastName:  opts.lastName,
		Password:  opts.password,
		IsAdmin:   true,
	})
}
