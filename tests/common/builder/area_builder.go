//go:build unit || e2e

package builder

import (
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

type AreaBuilder struct {
	ID            uuid.UUID
	CondominiumID uuid.UUID
	Name          string
	Active        bool
	Capacity      int
	Policy        area.Policy
	Flags         area.Flags
	Limits        quota.AreaLimits
	Slots         []schedule.Slot
	Weekdays      schedule.WeekdaySet
}

// NewAreaBuilder defaults to an active, exclusive area offering 10:00-12:00 every day.
func NewAreaBuilder() *AreaBuilder {
	return &AreaBuilder{
		ID:            uuid.New(),
		CondominiumID: uuid.New(),
		Name:          "Salao de Festas",
		Active:        true,
		Capacity:      50,
		Slots:         []schedule.Slot{MustSlot("10:00", "12:00")},
		Weekdays:      schedule.AllWeekdays,
	}
}

func (b *AreaBuilder) With(mutate func(*AreaBuilder)) *AreaBuilder {
	mutate(b)
	return b
}

func (b *AreaBuilder) params() area.Params {
	return area.Params{
		ID:            b.ID,
		CondominiumID: b.CondominiumID,
		Name:          b.Name,
		Active:        b.Active,
		Capacity:      b.Capacity,
		Policy:        b.Policy,
		Flags:         b.Flags,
		Limits:        b.Limits,
	}
}

// Build methods
func (b *AreaBuilder) BuildDomain() (*area.Area, error) {
	return area.New(b.params())
}

func (b *AreaBuilder) MustBuildDomain() *area.Area {
	a, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return a
}

func (b *AreaBuilder) BuildTimeSlots() []schedule.TimeSlot {
	out := make([]schedule.TimeSlot, 0, len(b.Slots))
	for _, s := range b.Slots {
		out = append(out, schedule.TimeSlot{
			ID:       uuid.New(),
			AreaID:   b.ID,
			Slot:     s,
			Weekdays: b.Weekdays,
		})
	}
	return out
}

func MustSlot(start, end string) schedule.Slot {
	s, err := schedule.ParseSlot(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

func MustDate(s string) time.Time {
	d, err := schedule.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
