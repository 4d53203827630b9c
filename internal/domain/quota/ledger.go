package quota

import (
	"context"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

// Window is an inclusive date range, narrowed to one slot for the horario dimension.
type Window struct {
	From time.Time
	To   time.Time
	Slot *schedule.Slot
}

// WindowFor fixes the window instance containing date:
// dia is the date, semana the ISO week (Monday to Sunday), mes and ano the calendar month
// and year, horario the exact (date, start, end) triple.
func WindowFor(d Dimension, date time.Time, slot schedule.Slot) Window {
	day := schedule.Date(date)
	switch d {
	case DimensionSlot:
		s := slot
		return Window{From: day, To: day, Slot: &s}
	case DimensionWeek:
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return Window{From: monday, To: monday.AddDate(0, 0, 6)}
	case DimensionMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: first, To: first.AddDate(0, 1, -1)}
	case DimensionYear:
		first := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{From: first, To: time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)}
	default:
		return Window{From: day, To: day}
	}
}

func (w Window) Contains(date time.Time, slot schedule.Slot) bool {
	d := schedule.Date(date)
	if d.Before(w.From) || d.After(w.To) {
		return false
	}
	return w.Slot == nil || *w.Slot == slot
}

// Anchor is the candidate reservation the ledger measures against.
type Anchor struct {
	AreaID        uuid.UUID
	CondominiumID uuid.UUID
	UnitID        uuid.UUID
	ResidentID    uuid.UUID
	Date          time.Time
	Slot          schedule.Slot
}

// Filter selects active reservations. Nil ids do not constrain.
type Filter struct {
	AreaID        *uuid.UUID
	CondominiumID *uuid.UUID
	UnitID        *uuid.UUID
	ResidentID    *uuid.UUID
	Window        Window
}

// Counter counts reservations in an active status matching a filter.
type Counter interface {
	CountActive(ctx context.Context, f Filter) (int, error)
}

// FilterFor maps a scope to the reservations it counts. Global counts the unit
// across every area of the condominium.
func FilterFor(d Dimension, s Scope, a Anchor) Filter {
	f := Filter{Window: WindowFor(d, a.Date, a.Slot)}
	switch s {
	case ScopeArea:
		f.AreaID = &a.AreaID
	case ScopeUnit:
		f.AreaID = &a.AreaID
		f.UnitID = &a.UnitID
	case ScopeResident:
		f.AreaID = &a.AreaID
		f.ResidentID = &a.ResidentID
	case ScopeGlobal:
		f.CondominiumID = &a.CondominiumID
		f.UnitID = &a.UnitID
	}
	return f
}

// Check is one configured cap to enforce.
type Check struct {
	Scope     Scope
	Dimension Dimension
	Limit     int
}

// Checks lists the non-zero caps: area, unidade, morador, then global, each in window order.
func Checks(area AreaLimits, global WindowLimits) []Check {
	var checks []Check
	add := func(s Scope, w WindowLimits) {
		for _, d := range Dimensions() {
			if limit := w.Get(d); limit > 0 {
				checks = append(checks, Check{Scope: s, Dimension: d, Limit: limit})
			}
		}
	}
	add(ScopeArea, area.Area)
	add(ScopeUnit, area.Unit)
	add(ScopeResident, area.Resident)
	add(ScopeGlobal, global)
	return checks
}

// Ledger derives counts from the live reservation set on every call.
type Ledger struct {
	counter Counter
}

func NewLedger(counter Counter) *Ledger {
	return &Ledger{counter: counter}
}

func (l *Ledger) CountActive(ctx context.Context, d Dimension, s Scope, a Anchor) (int, error) {
	if !d.IsValid() {
		return 0, ErrInvalidDimension
	}
	if !s.IsValid() {
		return 0, ErrInvalidScope
	}
	return l.counter.CountActive(ctx, FilterFor(d, s, a))
}

// Enforce stops at the first check whose count already reached its limit.
func (l *Ledger) Enforce(ctx context.Context, checks []Check, a Anchor) error {
	for _, c := range checks {
		current, err := l.CountActive(ctx, c.Dimension, c.Scope, a)
		if err != nil {
			return err
		}
		if current >= c.Limit {
			return &ExceededError{
				Dimension: c.Dimension,
				Scope:     c.Scope,
				Limit:     c.Limit,
				Current:   current,
			}
		}
	}
	return nil
}
