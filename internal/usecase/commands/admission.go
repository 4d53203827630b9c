package commands

//go:generate mockgen -source=admission.go -destination=../../../tests/mock/commands/admission_mock.go -package=commandsmock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
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

var (
	ErrInvalidRequest          = errs.New("invalid request")
	ErrIdempotencyKeyReused    = errs.New("idempotency key reused with a different request")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const maxProtocolAttempts = 3

// AdmitInput is a booking request. Staff acting on behalf of a resident set
// ResidentID and UnitID; residents book for themselves and their own unit.
type AdmitInput struct {
	Actor         user.Actor
	AreaID        uuid.UUID
	Date          time.Time
	Slot          schedule.Slot
	Guests        int
	TermsAccepted bool
	ResidentID    *uuid.UUID
	UnitID        *uuid.UUID
}

type AdmitResult struct {
	Reservation *queries.ReservationView
	IsReplayed  bool
}

type AdmissionCommands interface {
	Admit(ctx context.Context, in AdmitInput, idempotencyKey *uuid.UUID) (*AdmitResult, error)
	PurgeExpiredKeys(ctx context.Context) (int64, error)
}

type admissionCommandsImpl struct {
	uow       shared.UnitOfWork
	calendar  *clock.Calendar
	protocols reservation.ProtocolGenerator
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAdmissionCommands(
	uow shared.UnitOfWork,
	calendar *clock.Calendar,
	protocols reservation.ProtocolGenerator,
	cfg config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) AdmissionCommands {
	return &admissionCommandsImpl{
		uow:       uow,
		calendar:  calendar,
		protocols: protocols,
		ttl:       cfg.Booking.IdempotencyTTL,
		metrics:   m,
		logger:    logger,
	}
}

type owner struct {
	residentID uuid.UUID
	unitID     uuid.UUID
}

func (c *admissionCommandsImpl) Admit(ctx context.Context, in AdmitInput, idempotencyKey *uuid.UUID) (*AdmitResult, error) {
	result, err := c.admitWithRetry(ctx, in, idempotencyKey)
	c.metrics.ObserveAdmission(Outcome(err))
	return result, err
}

func (c *admissionCommandsImpl) admitWithRetry(ctx context.Context, in AdmitInput, idempotencyKey *uuid.UUID) (*AdmitResult, error) {
	if in.Guests < 1 || in.Slot.Start >= in.Slot.End || in.AreaID == uuid.Nil {
		return nil, ErrInvalidRequest
	}
	o, err := resolveOwner(in)
	if err != nil {
		return nil, err
	}
	hash := requestHash(in, o)

	for attempt := 1; ; attempt++ {
		var result *AdmitResult
		err := c.uow.WithinSerializable(ctx, func(ctx context.Context, tx shared.Tx) error {
			result = nil
			if idempotencyKey != nil {
				replayed, err := c.replay(ctx, tx, *idempotencyKey, in.Actor.ID, hash)
				if err != nil || replayed != nil {
					result = replayed
					return err
				}
			}

			res, a, err := c.admit(ctx, tx, in, o)
			if err != nil {
				return err
			}

			if idempotencyKey != nil {
				if err := c.record(ctx, tx, *idempotencyKey, in.Actor.ID, hash, res.ID()); err != nil {
					return err
				}
			}
			result = &AdmitResult{Reservation: queries.ViewFromDomain(res, a.Name())}
			return nil
		})

		switch {
		case err == nil:
			return result, nil
		case infra.IsConstraint(err, infra.ConstraintProtocol) && attempt < maxProtocolAttempts:
			c.logger.Warn("protocol collision, regenerating", "attempt", attempt)
			continue
		case errs.Is(err, shared.ErrMaxRetriesExceeded), infra.IsConstraint(err, infra.ConstraintExclusiveSlot):
			c.logger.Info("admission lost a concurrent race", "area_id", in.AreaID, "error", err.Error())
			return nil, errs.Mark(err, reservation.ErrSlotUnavailable)
		default:
			return nil, err
		}
	}
}

func resolveOwner(in AdmitInput) (owner, error) {
	if in.Actor.IsStaff() {
		if in.ResidentID == nil || in.UnitID == nil {
			return owner{}, errs.Wrap(ErrInvalidRequest, "resident_id and unit_id are required for staff bookings")
		}
		return owner{residentID: *in.ResidentID, unitID: *in.UnitID}, nil
	}
	if in.Actor.UnitID == nil {
		return owner{}, errs.Wrap(shared.ErrForbidden, "resident has no unit")
	}
	if in.ResidentID != nil && *in.ResidentID != in.Actor.ID {
		return owner{}, errs.Wrap(shared.ErrForbidden, "residents book only for themselves")
	}
	if in.UnitID != nil && *in.UnitID != *in.Actor.UnitID {
		return owner{}, errs.Wrap(shared.ErrForbidden, "residents book only for their own unit")
	}
	return owner{residentID: in.Actor.ID, unitID: *in.Actor.UnitID}, nil
}

// admit evaluates the rules in order and stops at the first failure.
func (c *admissionCommandsImpl) admit(ctx context.Context, tx shared.Tx, in AdmitInput, o owner) (*reservation.Reservation, *area.Area, error) {
	a, err := tx.Areas().FindByID(ctx, in.AreaID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, errs.Mark(err, shared.ErrAreaNotFound)
		}
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	date := schedule.Date(in.Date)
	today := c.calendar.Today()
	now := c.calendar.Now()

	if !a.IsActive() {
		return nil, nil, c.reject("area_inactive", in, reservation.ErrSlotUnavailable)
	}
	slots, err := tx.Areas().Slots(ctx, a.ID())
	if err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	blocks, err := tx.Areas().BlocksOn(ctx, a.ID(), date)
	if err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if _, ok := schedule.Find(schedule.Resolve(slots, blocks, date), in.Slot); !ok {
		return nil, nil, c.reject("slot_not_offered", in, reservation.ErrSlotUnavailable)
	}

	if err := a.CheckBookingWindow(date, today); err != nil {
		return nil, nil, c.reject("booking_window", in, err)
	}
	if err := a.CheckTerms(in.TermsAccepted); err != nil {
		return nil, nil, c.reject("terms", in, err)
	}
	if err := a.CheckGuests(in.Guests); err != nil {
		return nil, nil, c.reject("capacity", in, err)
	}

	anchor := quota.Anchor{
		AreaID:        a.ID(),
		CondominiumID: a.CondominiumID(),
		UnitID:        o.unitID,
		ResidentID:    o.residentID,
		Date:          date,
		Slot:          in.Slot,
	}
	ledger := quota.NewLedger(tx.Reservations())

	if capacity := a.SlotCapacity(); capacity > 0 {
		taken, err := ledger.CountActive(ctx, quota.DimensionSlot, quota.ScopeArea, anchor)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if taken >= capacity {
			return nil, nil, c.reject("slot_full", in, reservation.ErrSlotUnavailable)
		}
	}

	global, err := tx.Areas().GlobalLimits(ctx, a.CondominiumID())
	if err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := ledger.Enforce(ctx, quota.Checks(a.Limits(), global), anchor); err != nil {
		if errs.Is(err, quota.ErrQuotaExceeded) {
			return nil, nil, c.reject("quota", in, err)
		}
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if a.Flags().LockAfterBooking {
		locked, err := tx.Reservations().HasActive(ctx, a.ID(), o.residentID)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if locked {
			return nil, nil, c.reject("lock_after_booking", in, reservation.ErrSlotUnavailable)
		}
	}

	protocol, err := c.protocols.Generate()
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to generate protocol")
	}
	res, err := reservation.New(reservation.NewParams{
		AreaID:        a.ID(),
		CondominiumID: a.CondominiumID(),
		UnitID:        o.unitID,
		ResidentID:    o.residentID,
		Date:          date,
		Slot:          in.Slot,
		Guests:        in.Guests,
		TermsAccepted: in.TermsAccepted,
		Exclusive:     a.IsExclusive(),
		AutoConfirm:   a.Flags().AutoConfirm,
	}, protocol, now)
	if err != nil {
		return nil, nil, errs.Mark(err, ErrInvalidRequest)
	}

	if err := tx.Reservations().Create(ctx, res); err != nil {
		return nil, nil, err
	}
	if err := c.recordCreation(ctx, tx, res, a, in.Actor, now); err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Interests().DeleteForResident(ctx, a.ID(), o.residentID, date, in.Slot); err != nil {
		return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	c.logger.Info("reservation admitted",
		"reservation_id", res.ID(),
		"protocol", res.Protocol().String(),
		"area_id", a.ID(),
		"status", res.Status().String())
	return res, a, nil
}

// recordCreation writes the timeline and outbox rows that accompany a new reservation.
func (c *admissionCommandsImpl) recordCreation(ctx context.Context, tx shared.Tx, res *reservation.Reservation, a *area.Area, actor user.Actor, now time.Time) error {
	actions := []timeline.Action{timeline.ActionCreated}
	templates := []notification.TemplateKind{notification.TemplateReservationCreated}
	if res.Status() == reservation.StatusConfirmed {
		actions = append(actions, timeline.ActionConfirmed)
		templates = append(templates, notification.TemplateReservationConfirmed)
	}

	for _, action := range actions {
		event, err := timeline.NewEvent(res.ID(), action, actor.IDPtr(), now, nil)
		if err != nil {
			return err
		}
		if err := tx.Timeline().Append(ctx, event); err != nil {
			return err
		}
	}
	for _, kind := range templates {
		if err := enqueueNotify(ctx, tx, res, a.Name(), kind, now); err != nil {
			return err
		}
	}
	return nil
}

func (c *admissionCommandsImpl) replay(ctx context.Context, tx shared.Tx, key, actorID uuid.UUID, hash string) (*AdmitResult, error) {
	rec, err := tx.Idempotency().Get(ctx, key, actorID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if rec.IsExpired(c.calendar.Now()) {
		return nil, nil
	}
	if rec.RequestHash != hash {
		return nil, ErrIdempotencyKeyReused
	}

	res, err := tx.Reservations().FindByID(ctx, rec.ReservationID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	a, err := tx.Areas().FindByID(ctx, res.AreaID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &AdmitResult{Reservation: queries.ViewFromDomain(res, a.Name()), IsReplayed: true}, nil
}

func (c *admissionCommandsImpl) record(ctx context.Context, tx shared.Tx, key, actorID uuid.UUID, hash string, reservationID uuid.UUID) error {
	now := c.calendar.Now()
	inserted, err := tx.Idempotency().TryInsert(ctx, shared.IdempotencyRecord{
		Key:           key,
		ActorID:       actorID,
		RequestHash:   hash,
		ReservationID: reservationID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(c.ttl),
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !inserted {
		return ErrIdempotencyKeyReused
	}
	return nil
}

func (c *admissionCommandsImpl) PurgeExpiredKeys(ctx context.Context) (int64, error) {
	var purged int64
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Idempotency().DeleteExpired(ctx, c.calendar.Now())
		purged = n
		return err
	})
	return purged, err
}

func (c *admissionCommandsImpl) reject(rule string, in AdmitInput, err error) error {
	c.logger.Info("admission rejected",
		"rule", rule,
		"area_id", in.AreaID,
		"date", schedule.FormatDate(in.Date),
		"slot", in.Slot.String(),
		"actor_id", in.Actor.ID,
		"error", err.Error())
	return err
}

func requestHash(in AdmitInput, o owner) string {
	data, _ := json.Marshal(struct {
		AreaID        uuid.UUID `json:"area_id"`
		Date          string    `json:"date"`
		Slot          string    `json:"slot"`
		Guests        int       `json:"guests"`
		TermsAccepted bool      `json:"terms_accepted"`
		ResidentID    uuid.UUID `json:"resident_id"`
		UnitID        uuid.UUID `json:"unit_id"`
	}{
		AreaID:        in.AreaID,
		Date:          schedule.FormatDate(in.Date),
		Slot:          in.Slot.String(),
		Guests:        in.Guests,
		TermsAccepted: in.TermsAccepted,
		ResidentID:    o.residentID,
		UnitID:        o.unitID,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
