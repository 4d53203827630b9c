package commands

//go:generate mockgen -source=reservation_status.go -destination=../../../tests/mock/commands/reservation_status_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/infra"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/pkg/metrics"
	"condo-booking/internal/usecase/queries"
	"condo-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationStatusCommands interface {
	Confirm(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error)
	Cancel(ctx context.Context, id uuid.UUID, actor user.Actor, note *string) (*queries.ReservationView, error)
	MarkUsed(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error)
}

type reservationStatusCommandsImpl struct {
	uow         shared.UnitOfWork
	calendar    *clock.Calendar
	staffBypass bool
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewReservationStatusCommands(
	uow shared.UnitOfWork,
	calendar *clock.Calendar,
	cfg config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) ReservationStatusCommands {
	return &reservationStatusCommandsImpl{
		uow:         uow,
		calendar:    calendar,
		staffBypass: cfg.Booking.StaffCancelBypass,
		metrics:     m,
		logger:      logger,
	}
}

// transitionFunc runs after the reservation is loaded and access has been checked.
// It applies the status change and any side effects beyond the timeline event.
type transitionFunc func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, a *area.Area, now time.Time) error

func (c *reservationStatusCommandsImpl) Confirm(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error) {
	if !actor.IsStaff() {
		return nil, shared.ErrForbidden
	}
	return c.transition(ctx, id, actor, reservation.TransitionConfirm, nil,
		func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, a *area.Area, now time.Time) error {
			if err := res.Confirm(now); err != nil {
				return err
			}
			if err := tx.Reservations().UpdateStatus(ctx, res); err != nil {
				return err
			}
			return enqueueNotify(ctx, tx, res, a.Name(), notification.TemplateReservationConfirmed, now)
		})
}

func (c *reservationStatusCommandsImpl) Cancel(ctx context.Context, id uuid.UUID, actor user.Actor, note *string) (*queries.ReservationView, error) {
	return c.transition(ctx, id, actor, reservation.TransitionCancel, note,
		func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, a *area.Area, now time.Time) error {
			// An invalid source state wins over the window check so a repeated cancel reports INVALID_TRANSITION.
			if _, err := res.Status().Next(reservation.TransitionCancel); err != nil {
				return err
			}
			if !(actor.IsStaff() && c.staffBypass) {
				if err := a.CheckCancellationWindow(res.Date(), c.calendar.Today()); err != nil {
					c.logger.Info("cancellation rejected",
						"reservation_id", res.ID(),
						"actor_id", actor.ID,
						"error", err.Error())
					return err
				}
			}
			if err := res.Cancel(now); err != nil {
				return err
			}
			if err := tx.Reservations().UpdateStatus(ctx, res); err != nil {
				return err
			}
			if err := enqueueNotify(ctx, tx, res, a.Name(), notification.TemplateReservationCancelled, now); err != nil {
				return err
			}
			freed, err := notification.NewSlotFreedJob(res.ID(), res.AreaID(), res.Date(), res.Slot(), now)
			if err != nil {
				return err
			}
			_, err = tx.Notifications().Enqueue(ctx, freed)
			return err
		})
}

func (c *reservationStatusCommandsImpl) MarkUsed(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error) {
	if !actor.IsStaff() {
		return nil, shared.ErrForbidden
	}
	return c.transition(ctx, id, actor, reservation.TransitionUse, nil,
		func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, _ *area.Area, now time.Time) error {
			if err := res.MarkUsed(now); err != nil {
				return err
			}
			return tx.Reservations().UpdateStatus(ctx, res)
		})
}

func (c *reservationStatusCommandsImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	actor user.Actor,
	t reservation.Transition,
	note *string,
	apply transitionFunc,
) (*queries.ReservationView, error) {
	var view *queries.ReservationView
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, shared.ErrReservationNotFound)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !actor.CanAccess(res.ResidentID()) {
			return shared.ErrForbidden
		}
		a, err := tx.Areas().FindByID(ctx, res.AreaID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := c.calendar.Now()
		if err := apply(ctx, tx, res, a, now); err != nil {
			return err
		}

		action, err := timeline.ActionFor(res.Status())
		if err != nil {
			return err
		}
		event, err := timeline.NewEvent(res.ID(), action, actor.IDPtr(), now, note)
		if err != nil {
			return err
		}
		if err := tx.Timeline().Append(ctx, event); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		view = queries.ViewFromDomain(res, a.Name())
		return nil
	})

	result := Outcome(err)
	c.metrics.ObserveTransition(t.String(), result)
	if err != nil {
		return nil, err
	}
	c.logger.Info("reservation transitioned",
		"reservation_id", id,
		"transition", t.String(),
		"status", view.Status,
		"actor_id", actor.ID)
	return view, nil
}
