package waitlist

import (
	"errors"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrAlreadyRegistered = errors.New("interest already registered")
	ErrEntryNotFound     = errors.New("interest entry not found")
	ErrMissingResident   = errors.New("resident is required")
)

type Status string

const (
	StatusWaiting  Status = "aguardando"
	StatusNotified Status = "notificado"
)

// Entry is a resident's request to hear about a specific slot freeing up.
type Entry struct {
	id         uuid.UUID
	areaID     uuid.UUID
	residentID uuid.UUID
	unitID     uuid.UUID
	date       time.Time
	slot       schedule.Slot
	status     Status
	createdAt  time.Time
	notifiedAt *time.Time
}

func NewEntry(areaID, residentID, unitID uuid.UUID, date time.Time, slot schedule.Slot, now time.Time) (*Entry, error) {
	if residentID == uuid.Nil {
		return nil, ErrMissingResident
	}
	if slot.Start >= slot.End {
		return nil, schedule.ErrInvalidSlot
	}
	return &Entry{
		id:         uuid.New(),
		areaID:     areaID,
		residentID: residentID,
		unitID:     unitID,
		date:       schedule.Date(date),
		slot:       slot,
		status:     StatusWaiting,
		createdAt:  now,
	}, nil
}

func Reconstruct(id, areaID, residentID, unitID uuid.UUID, date time.Time, slot schedule.Slot, status Status, createdAt time.Time, notifiedAt *time.Time) *Entry {
	return &Entry{
		id:         id,
		areaID:     areaID,
		residentID: residentID,
		unitID:     unitID,
		date:       schedule.Date(date),
		slot:       slot,
		status:     status,
		createdAt:  createdAt,
		notifiedAt: notifiedAt,
	}
}

func (e *Entry) ID() uuid.UUID          { return e.id }
func (e *Entry) AreaID() uuid.UUID      { return e.areaID }
func (e *Entry) ResidentID() uuid.UUID  { return e.residentID }
func (e *Entry) UnitID() uuid.UUID      { return e.unitID }
func (e *Entry) Date() time.Time        { return e.date }
func (e *Entry) Slot() schedule.Slot    { return e.slot }
func (e *Entry) Status() Status         { return e.status }
func (e *Entry) CreatedAt() time.Time   { return e.createdAt }
func (e *Entry) NotifiedAt() *time.Time { return e.notifiedAt }

// MarkNotified keeps the entry; a later freeing notifies it again.
func (e *Entry) MarkNotified(now time.Time) {
	e.status = StatusNotified
	e.notifiedAt = &now
}

func (e *Entry) IsExpired(today time.Time) bool {
	return e.date.Before(schedule.Date(today))
}
