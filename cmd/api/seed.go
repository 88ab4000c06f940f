package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
	"github.com/flicky/storefront-api/internal/service"
)

func seedCmd() *cobra.Command {
	var (
		email    string
		password string
		noUser   bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog and a test user into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			pool, err := connectPostgres(ctx, cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			if _, err := repository.Migrate(ctx, pool); err != nil {
				return err
			}

			var user *model.User
			if !noUser {
				hash, err := service.HashPassword(password)
				if err != nil {
					return err
				}
				user = &model.User{Email: email, Name: "Test User", PasswordHash: hash}
			}

			res, err := repository.Seed(ctx, repository.NewStore(pool), user)
			if err != nil {
				return err
			}
			log.Info("seed complete", "products", res.Products, "test_user_created", res.UserCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "test@example.com", "test user email")
	cmd.Flags().StringVar(&password, "password", "password123", "test user password")
	cmd.Flags().BoolVar(&noUser, "no-user", false, "skip the test user")
	return cmd
}
