package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"condo-booking/cmd/bootstrap"
	"condo-booking/internal/infra/seed"
	"condo-booking/internal/usecase/shared"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load area configuration from a TOML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			parsed, err := seed.Parse(f)
			if err != nil {
				return err
			}
			plan, err := parsed.Plan()
			if err != nil {
				return err
			}

			var (
				uow    shared.UnitOfWork
				logger *slog.Logger
			)
			opts := fx.Options(bootstrap.Base, fx.Populate(&uow, &logger))
			return runOnce(cmd.Context(), opts, func(ctx context.Context) error {
				return seed.Apply(ctx, uow, plan, logger)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "areas.toml", "path to the area configuration file")
	return cmd
}
