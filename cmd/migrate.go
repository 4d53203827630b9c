package main

import (
	"context"
	"log/slog"

	"condo-booking/cmd/bootstrap"
	"condo-booking/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				pool   *pgxpool.Pool
				logger *slog.Logger
			)
			opts := fx.Options(bootstrap.Base, fx.Populate(&pool, &logger))
			return runOnce(cmd.Context(), opts, func(ctx context.Context) error {
				n, err := db.Migrate(ctx, pool, logger)
				if err != nil {
					return err
				}
				logger.Info("migrations complete", "applied", n)
				return nil
			})
		},
	}
}
