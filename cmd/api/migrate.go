package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flicky/storefront-api/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
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

			applied, err := repository.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			log.Info("migrations applied", "count", len(applied), "migrations", applied)
			return nil
		},
	}
}
