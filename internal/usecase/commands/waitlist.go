package commands

//go:generate mockgen -source=waitlist.go -destination=../../../tests/mock/commands/waitlist_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/domain/waitlist"
	"condo-booking/internal/infra"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/queries"
	"condo-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type RegisterInterestInput struct {
	Actor  user.Actor
	AreaID uuid.UUID
	Date   time.Time
	Slot   schedule.Slot
}

type WaitlistCommands interface {
	RegisterInterest(ctx context.Context, in RegisterInterestInput) (*queries.InterestView, error)
	WithdrawInterest(ctx context.Context, id uuid.UUID, actor user.Actor) error
	// OnFreed notifies everyone waiting on the slot in FIFO order. It never books.
	OnFreed(ctx context.Context, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error)
	OnFreedWithin(ctx context.Context, tx shared.Tx, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type waitlistCommandsImpl struct {
	uow      shared.UnitOfWork
	calendar *clock.Calendar
	logger   *slog.Logger
}

func NewWaitlistCommands(uow shared.UnitOfWork, calendar *clock.Calendar, logger *slog.Logger) WaitlistCommands {
	return &waitlistCommandsImpl{
		uow:      uow,
		calendar: calendar,
		logger:   logger,
	}
}

func (c *waitlistCommandsImpl) RegisterInterest(ctx context.Context, in RegisterInterestInput) (*queries.InterestView, error) {
	if in.Actor.UnitID == nil {
		return nil, errs.Wrap(shared.ErrForbidden, "only residents with a unit can register interest")
	}
	if in.Slot.Start >= in.Slot.End {
		return nil, ErrInvalidRequest
	}

	var view *queries.InterestView
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		a, err := tx.Areas().FindByID(ctx, in.AreaID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, shared.ErrAreaNotFound)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		date := schedule.Date(in.Date)
		if date.Before(c.calendar.Today()) || !a.IsActive() {
			return reservation.ErrSlotUnavailable
		}
		slots, err := tx.Areas().Slots(ctx, a.ID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		blocks, err := tx.Areas().BlocksOn(ctx, a.ID(), date)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if _, ok := schedule.Find(schedule.Resolve(slots, blocks, date), in.Slot); !ok {
			return reservation.ErrSlotUnavailable
		}

		entry, err := waitlist.NewEntry(a.ID(), in.Actor.ID, *in.Actor.UnitID, date, in.Slot, c.calendar.Now())
		if err != nil {
			return errs.Mark(err, ErrInvalidRequest)
		}
		if err := tx.Interests().Create(ctx, entry); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, waitlist.ErrAlreadyRegistered)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		view = queries.InterestFromDomain(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("interest registered",
		"interest_id", view.ID,
		"area_id", in.AreaID,
		"date", view.Date,
		"resident_id", in.Actor.ID)
	return view, nil
}

func (c *waitlistCommandsImpl) WithdrawInterest(ctx context.Context, id uuid.UUID, actor user.Actor) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entry, err := tx.Interests().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, waitlist.ErrEntryNotFound)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !actor.CanAccess(entry.ResidentID()) {
			return shared.ErrForbidden
		}
		if err := tx.Interests().Delete(ctx, id); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, waitlist.ErrEntryNotFound)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *waitlistCommandsImpl) OnFreed(ctx context.Context, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error) {
	var notified []*waitlist.Entry
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entries, err := c.OnFreedWithin(ctx, tx, areaID, date, slot)
		notified = entries
		return err
	})
	if err != nil {
		return nil, err
	}
	return notified, nil
}

func (c *waitlistCommandsImpl) OnFreedWithin(ctx context.Context, tx shared.Tx, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error) {
	date = schedule.Date(date)
	if date.Before(c.calendar.Today()) {
		c.logger.Debug("freed slot already in the past", "area_id", areaID, "date", schedule.FormatDate(date))
		return nil, nil
	}

	entries, err := tx.Interests().ListForSlot(ctx, areaID, date, slot)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	now := c.calendar.Now()
	data := map[string]any{
		"area_id": areaID.String(),
		"date":    schedule.FormatDate(date),
		"start":   slot.Start.String(),
		"end":     slot.End.String(),
	}
	for _, entry := range entries {
		job, err := notification.NewNotifyJob(entry.ResidentID(), notification.TemplateSlotAvailable, data, "", now)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Notifications().Enqueue(ctx, job); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		entry.MarkNotified(now)
		if err := tx.Interests().MarkNotified(ctx, entry); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	if len(entries) > 0 {
		c.logger.Info("waitlist notified",
			"area_id", areaID,
			"date", schedule.FormatDate(date),
			"slot", slot.String(),
			"entries", len(entries))
	}
	return entries, nil
}

func (c *waitlistCommandsImpl) PurgeExpired(ctx context.Context) (int64, error) {
	var purged int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Interests().DeleteBefore(ctx, c.calendar.Today())
		purged = n
		return err
	})
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		c.logger.Info("expired interest entries purged", "count", purged)
	}
	return purged, nil
}
