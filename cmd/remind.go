package main

import (
	"context"
	"log/slog"

	"condo-booking/cmd/bootstrap"
	"condo-booking/cmd/bootstrap/components"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newRemindCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Enqueue reminders for confirmed reservations on a date (default: tomorrow)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				reminders commands.ReminderCommands
				calendar  *clock.Calendar
				logger    *slog.Logger
			)
			opts := fx.Options(
				bootstrap.Base,
				components.UseCaseModule,
				fx.Populate(&reminders, &calendar, &logger),
			)
			return runOnce(cmd.Context(), opts, func(ctx context.Context) error {
				day := calendar.Today().AddDate(0, 0, 1)
				if date != "" {
					d, err := schedule.ParseDate(date)
					if err != nil {
						return err
					}
					day = d
				}

				n, err := reminders.EnqueueReminders(ctx, day)
				if err != nil {
					return err
				}
				logger.Info("reminders enqueued", "date", schedule.FormatDate(day), "count", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "reservation date (YYYY-MM-DD)")
	return cmd
}
