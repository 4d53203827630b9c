package request

import (
	"strings"
	"time"

	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type AdmitReservationRequest struct {
	AreaID        uuid.UUID  `json:"area_id" binding:"required"`
	Date          string     `json:"date" binding:"required"`
	Start         string     `json:"start" binding:"required"`
	End           string     `json:"end" binding:"required"`
	Guests        int        `json:"guests" binding:"min=0"`
	TermsAccepted bool       `json:"terms_accepted"`
	ResidentID    *uuid.UUID `json:"resident_id,omitempty"`
	UnitID        *uuid.UUID `json:"unit_id,omitempty"`
}

func (r AdmitReservationRequest) ToInput(actor user.Actor) (commands.AdmitInput, error) {
	date, slot, err := parseDateSlot(r.Date, r.Start, r.End)
	if err != nil {
		return commands.AdmitInput{}, err
	}
	return commands.AdmitInput{
		Actor:         actor,
		AreaID:        r.AreaID,
		Date:          date,
		Slot:          slot,
		Guests:        r.Guests,
		TermsAccepted: r.TermsAccepted,
		ResidentID:    r.ResidentID,
		UnitID:        r.UnitID,
	}, nil
}

type CancelReservationRequest struct {
	Note *string `json:"note,omitempty" binding:"omitempty,max=500"`
}

// GetNote returns nil for an absent or blank note.
func (r CancelReservationRequest) GetNote() *string {
	if r.Note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type ListReservationsQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	After string `form:"after"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q ListReservationsQuery) ToFilter() (queries.ListFilter, error) {
	filter := queries.ListFilter{Limit: q.Limit}
	if q.From != "" {
		from, err := schedule.ParseDate(q.From)
		if err != nil {
			return queries.ListFilter{}, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := schedule.ParseDate(q.To)
		if err != nil {
			return queries.ListFilter{}, err
		}
		filter.To = &to
	}
	if q.After != "" {
		filter.After = &queries.Cursor{After: q.After}
	}
	return filter, nil
}

type AvailabilityQuery struct {
	Date string `form:"date" binding:"required"`
}

func (q AvailabilityQuery) ParseDate() (time.Time, error) {
	return schedule.ParseDate(q.Date)
}

type RegisterInterestRequest struct {
	Date  string `json:"date" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

func (r RegisterInterestRequest) ToInput(actor user.Actor, areaID uuid.UUID) (commands.RegisterInterestInput, error) {
	date, slot, err := parseDateSlot(r.Date, r.Start, r.End)
	if err != nil {
		return commands.RegisterInterestInput{}, err
	}
	return commands.RegisterInterestInput{
		Actor:  actor,
		AreaID: areaID,
		Date:   date,
		Slot:   slot,
	}, nil
}

func parseDateSlot(date, start, end string) (time.Time, schedule.Slot, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return time.Time{}, schedule.Slot{}, err
	}
	slot, err := schedule.ParseSlot(start, end)
	if err != nil {
		return time.Time{}, schedule.Slot{}, err
	}
	return d, slot, nil
}
