//go:build unit || e2e

package builder

import (
	"time"

	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/user"
	reqdto "condo-booking/internal/handler/dto/request"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
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
	Protocol      reservation.Protocol
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		AreaID:        uuid.New(),
		CondominiumID: uuid.New(),
		UnitID:        uuid.New(),
		ResidentID:    uuid.New(),
		Date:          MustDate("2026-03-10"),
		Slot:          MustSlot("10:00", "12:00"),
		Guests:        2,
		TermsAccepted: true,
		Exclusive:     true,
		Protocol:      "7K3M9QX2PA",
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// ForArea copies the area and condominium ids so the reservation counts against a.
func (b *ReservationBuilder) ForArea(a *AreaBuilder) *ReservationBuilder {
	b.AreaID = a.ID
	b.CondominiumID = a.CondominiumID
	b.Exclusive = !a.Flags.AllowMultiple
	return b
}

// Build methods
func (b *ReservationBuilder) BuildDomain(now time.Time) (*reservation.Reservation, error) {
	return reservation.New(reservation.NewParams{
		AreaID:        b.AreaID,
		CondominiumID: b.CondominiumID,
		UnitID:        b.UnitID,
		ResidentID:    b.ResidentID,
		Date:          b.Date,
		Slot:          b.Slot,
		Guests:        b.Guests,
		TermsAccepted: b.TermsAccepted,
		Exclusive:     b.Exclusive,
		AutoConfirm:   b.AutoConfirm,
	}, b.Protocol, now)
}

// Resident is the actor who owns the reservation.
func (b *ReservationBuilder) Resident() user.Actor {
	unitID := b.UnitID
	return user.NewActor(b.ResidentID, user.RoleResident, &unitID)
}

func (b *ReservationBuilder) BuildAdmitInput() commands.AdmitInput {
	return commands.AdmitInput{
		Actor:         b.Resident(),
		AreaID:        b.AreaID,
		Date:          b.Date,
		Slot:          b.Slot,
		Guests:        b.Guests,
		TermsAccepted: b.TermsAccepted,
	}
}

func (b *ReservationBuilder) BuildRequestDTO() reqdto.AdmitReservationRequest {
	return reqdto.AdmitReservationRequest{
		AreaID:        b.AreaID,
		Date:          schedule.FormatDate(b.Date),
		Start:         b.Slot.Start.String(),
		End:           b.Slot.End.String(),
		Guests:        b.Guests,
		TermsAccepted: b.TermsAccepted,
	}
}

// BuildView panics on invalid builder state; it is meant for handler stubs.
func (b *ReservationBuilder) BuildView(now time.Time) *queries.ReservationView {
	r, err := b.BuildDomain(now)
	if err != nil {
		panic(err)
	}
	return queries.ViewFromDomain(r, "Salao de festas")
}
