package commands

import (
	"context"
	"log/slog"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"
)

type ReminderCommands interface {
	// EnqueueReminders queues one lembrete per confirmed reservation on date.
	// Running it twice for the same date enqueues nothing new.
	EnqueueReminders(ctx context.Context, date time.Time) (int, error)
}

type reminderCommandsImpl struct {
	uow      shared.UnitOfWork
	calendar *clock.Calendar
	logger   *slog.Logger
}

func NewReminderCommands(uow shared.UnitOfWork, calendar *clock.Calendar, logger *slog.Logger) ReminderCommands {
	return &reminderCommandsImpl{uow: uow, calendar: calendar, logger: logger}
}

func (c *reminderCommandsImpl) EnqueueReminders(ctx context.Context, date time.Time) (int, error) {
	date = schedule.Date(date)
	enqueued := 0
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		enqueued = 0
		confirmed, err := tx.Reservations().ListConfirmedOn(ctx, date)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		names := map[string]string{}
		now := c.calendar.Now()
		for _, res := range confirmed {
			key := res.AreaID().String()
			name, ok := names[key]
			if !ok {
				a, err := tx.Areas().FindByID(ctx, res.AreaID())
				if err != nil {
					return errs.Mark(err, ErrDatabaseOperationFailed)
				}
				name = a.Name()
				names[key] = name
			}

			job, err := notification.NewNotifyJob(
				res.ResidentID(),
				notification.TemplateReminder,
				reservationData(res, name),
				string(notification.TemplateReminder)+":"+res.ID().String(),
				now,
			)
			if err != nil {
				return err
			}
			inserted, err := tx.Notifications().Enqueue(ctx, job)
			if err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			if inserted {
				enqueued++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info("reminders enqueued", "date", schedule.FormatDate(date), "count", enqueued)
	return enqueued, nil
}
