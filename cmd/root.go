package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "condo-booking",
		Short:         "Admission control for condominium common-area reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newRemindCmd())
	root.AddCommand(newTokenCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runOnce builds a short-lived app, hands its populated targets to fn and
// stops the app afterwards so connection pools are released.
func runOnce(ctx context.Context, opts fx.Option, fn func(ctx context.Context) error) error {
	app := fx.New(opts, fx.NopLogger)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)
	if err := app.Stop(context.Background()); err != nil && runErr == nil {
		return err
	}
	return runErr
}
