package reservation

import (
	"errors"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidGuests     = errors.New("guest count must be at least 1")
	ErrInvalidProtocol   = errors.New("invalid protocol")
	ErrMissingOwner      = errors.New("unit and resident are required")
)

type Reservation struct {
	id            uuid.UUID
	protocol      Protocol
	areaID        uuid.UUID
	condominiumID uuid.UUID
	unitID        uuid.UUID
	residentID    uuid.UUID
	date          time.Time
	slot          schedule.Slot
	status        Status
	guests        int
	termsAccepted bool
	exclusive     bool
	createdAt     time.Time
	updatedAt     time.Time
}

type NewParams struct {
	AreaID        uuid.UUID
	CondominiumID uuid.UUID
	UnitID        uuid.UUID
	ResidentID    uuid.UUID
	Date          time.Time
	Slot          schedule.Slot
	Guests        int
	TermsAccepted bool
	Exclusive     bool
	AutoConfirm   bool
}

// New creates a pending reservation, or a confirmed one when AutoConfirm is set.
func New(p NewParams, protocol Protocol, now time.Time) (*Reservation, error) {
	if p.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	if p.UnitID == uuid.Nil || p.ResidentID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	if p.Slot.Start >= p.Slot.End {
		return nil, schedule.ErrInvalidSlot
	}

	status := StatusPending
	if p.AutoConfirm {
		status = StatusConfirmed
	}

	return &Reservation{
		id:            uuid.New(),
		protocol:      protocol,
		areaID:        p.AreaID,
		condominiumID: p.CondominiumID,
		unitID:        p.UnitID,
		residentID:    p.ResidentID,
		date:          schedule.Date(p.Date),
		slot:          p.Slot,
		status:        status,
		guests:        p.Guests,
		termsAccepted: p.TermsAccepted,
		exclusive:     p.Exclusive,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

type ReconstructParams struct {
	ID            uuid.UUID
	Protocol      Protocol
	AreaID        uuid.UUID
	CondominiumID uuid.UUID
	UnitID        uuid.UUID
	ResidentID    uuid.UUID
	Date          time.Time
	Slot          schedule.Slot
	Status        Status
	Guests        int
	TermsAccepted bool
	Exclusive     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func Reconstruct(p ReconstructParams) *Reservation {
	return &Reservation{
		id:            p.ID,
		protocol:      p.Protocol,
		areaID:        p.AreaID,
		condominiumID: p.CondominiumID,
		unitID:        p.UnitID,
		residentID:    p.ResidentID,
		date:          schedule.Date(p.Date),
		slot:          p.Slot,
		status:        p.Status,
		guests:        p.Guests,
		termsAccepted: p.TermsAccepted,
		exclusive:     p.Exclusive,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) Protocol() Protocol       { return r.protocol }
func (r *Reservation) AreaID() uuid.UUID        { return r.areaID }
func (r *Reservation) CondominiumID() uuid.UUID { return r.condominiumID }
func (r *Reservation) UnitID() uuid.UUID        { return r.unitID }
func (r *Reservation) ResidentID() uuid.UUID    { return r.residentID }
func (r *Reservation) Date() time.Time          { return r.date }
func (r *Reservation) Slot() schedule.Slot      { return r.slot }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) Guests() int              { return r.guests }
func (r *Reservation) TermsAccepted() bool      { return r.termsAccepted }
func (r *Reservation) Exclusive() bool          { return r.exclusive }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }

func (r *Reservation) Confirm(now time.Time) error {
	return r.apply(TransitionConfirm, now)
}

func (r *Reservation) Cancel(now time.Time) error {
	return r.apply(TransitionCancel, now)
}

func (r *Reservation) MarkUsed(now time.Time) error {
	return r.apply(TransitionUse, now)
}

func (r *Reservation) apply(t Transition, now time.Time) error {
	next, err := r.status.Next(t)
	if err != nil {
		return err
	}
	r.status = next
	r.updatedAt = now
	return nil
}
