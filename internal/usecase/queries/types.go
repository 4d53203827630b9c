package queries

import (
	"time"

	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/waitlist"

	"github.com/google/uuid"
)

// ReservationView represents read-optimized reservation data
type ReservationView struct {
	ID            uuid.UUID `json:"id"`
	Protocol      string    `json:"protocol"`
	AreaID        uuid.UUID `json:"area_id"`
	AreaName      string    `json:"area_name,omitempty"`
	UnitID        uuid.UUID `json:"unit_id"`
	ResidentID    uuid.UUID `json:"resident_id"`
	Date          string    `json:"date"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	Status        string    `json:"status"`
	Guests        int       `json:"guests"`
	TermsAccepted bool      `json:"terms_accepted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ViewFromDomain(r *reservation.Reservation, areaName string) *ReservationView {
	return &ReservationView{
		ID:            r.ID(),
		Protocol:      r.Protocol().String(),
		AreaID:        r.AreaID(),
		AreaName:      areaName,
		UnitID:        r.UnitID(),
		ResidentID:    r.ResidentID(),
		Date:          schedule.FormatDate(r.Date()),
		Start:         r.Slot().Start.String(),
		End:           r.Slot().End.String(),
		Status:        r.Status().String(),
		Guests:        r.Guests(),
		TermsAccepted: r.TermsAccepted(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

type TimelineEventView struct {
	ID         uuid.UUID  `json:"id"`
	Action     string     `json:"action"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	Note       *string    `json:"note,omitempty"`
}

// SlotAvailability reports a resolved slot. Remaining is nil when the slot has no cap.
type SlotAvailability struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Active    int    `json:"active"`
	Remaining *int   `json:"remaining,omitempty"`
	Available bool   `json:"available"`
}

type AvailabilityView struct {
	AreaID   uuid.UUID          `json:"area_id"`
	Date     string             `json:"date"`
	Bookable bool               `json:"bookable"`
	Slots    []SlotAvailability `json:"slots"`
}

type InterestView struct {
	ID         uuid.UUID  `json:"id"`
	AreaID     uuid.UUID  `json:"area_id"`
	ResidentID uuid.UUID  `json:"resident_id"`
	Date       string     `json:"date"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

func InterestFromDomain(e *waitlist.Entry) *InterestView {
	return &InterestView{
		ID:         e.ID(),
		AreaID:     e.AreaID(),
		ResidentID: e.ResidentID(),
		Date:       schedule.FormatDate(e.Date()),
		Start:      e.Slot().Start.String(),
		End:        e.Slot().End.String(),
		Status:     string(e.Status()),
		CreatedAt:  e.CreatedAt(),
		NotifiedAt: e.NotifiedAt(),
	}
}
