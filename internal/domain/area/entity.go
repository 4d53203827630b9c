package area

import (
	"errors"
	"strings"
	"time"

	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrEmptyName            = errors.New("area name cannot be empty")
	ErrInvalidPolicy        = errors.New("invalid scheduling policy")
	ErrInvalidCapacity      = errors.New("capacity cannot be negative")
	ErrOutsideBookingWindow = errors.New("outside booking window")
	ErrCancellationTooLate  = errors.New("cancellation too late")
	ErrTermsNotAccepted     = errors.New("terms not accepted")
	ErrCapacityExceeded     = errors.New("guest count exceeds area capacity")
)

// Policy holds the day-based booking and cancellation windows.
// MaxAdvanceDays of zero leaves the upper bound open.
type Policy struct {
	MinAdvanceDays int `toml:"dias_minimo_antecedencia"`
	MaxAdvanceDays int `toml:"dias_maximo_antecedencia"`
	MinCancelDays  int `toml:"dias_minimo_cancelamento"`
}

func (p Policy) Validate() error {
	if p.MinAdvanceDays < 0 || p.MaxAdvanceDays < 0 || p.MinCancelDays < 0 {
		return ErrInvalidPolicy
	}
	if p.MaxAdvanceDays > 0 && p.MinAdvanceDays > p.MaxAdvanceDays {
		return ErrInvalidPolicy
	}
	return nil
}

type Flags struct {
	AutoConfirm      bool `toml:"confirmacao_automatica"`
	AllowMultiple    bool `toml:"permitir_multiplas_reservas"`
	LockAfterBooking bool `toml:"bloquear_apos_reserva"`
	RequiresTerms    bool `toml:"exige_termo"`
}

type Area struct {
	id            uuid.UUID
	condominiumID uuid.UUID
	name          string
	active        bool
	capacity      int
	policy        Policy
	flags         Flags
	limits        quota.AreaLimits
	updatedAt     time.Time
}

type Params struct {
	ID            uuid.UUID
	CondominiumID uuid.UUID
	Name          string
	Active        bool
	Capacity      int
	Policy        Policy
	Flags         Flags
	Limits        quota.AreaLimits
}

func New(p Params) (*Area, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, ErrEmptyName
	}
	if p.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if err := p.Policy.Validate(); err != nil {
		return nil, err
	}
	if err := p.Limits.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidPolicy, err)
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Area{
		id:            id,
		condominiumID: p.CondominiumID,
		name:          strings.TrimSpace(p.Name),
		active:        p.Active,
		capacity:      p.Capacity,
		policy:        p.Policy,
		flags:         p.Flags,
		limits:        p.Limits,
	}, nil
}

// Reconstruct rebuilds an area from storage without validation.
func Reconstruct(p Params, updatedAt time.Time) *Area {
	return &Area{
		id:            p.ID,
		condominiumID: p.CondominiumID,
		name:          p.Name,
		active:        p.Active,
		capacity:      p.Capacity,
		policy:        p.Policy,
		flags:         p.Flags,
		limits:        p.Limits,
		updatedAt:     updatedAt,
	}
}

func (a *Area) ID() uuid.UUID             { return a.id }
func (a *Area) CondominiumID() uuid.UUID  { return a.condominiumID }
func (a *Area) Name() string              { return a.name }
func (a *Area) IsActive() bool            { return a.active }
func (a *Area) Capacity() int             { return a.capacity }
func (a *Area) Policy() Policy            { return a.policy }
func (a *Area) Flags() Flags              { return a.flags }
func (a *Area) Limits() quota.AreaLimits  { return a.limits }
func (a *Area) UpdatedAt() time.Time      { return a.updatedAt }
func (a *Area) IsExclusive() bool         { return !a.flags.AllowMultiple }

// SlotCapacity is how many active reservations one (date, slot) may hold; 0 is unbounded.
func (a *Area) SlotCapacity() int {
	if !a.flags.AllowMultiple {
		return 1
	}
	return a.limits.Area.Slot
}

// CheckBookingWindow enforces min <= date-today <= max. Past dates always fail.
func (a *Area) CheckBookingWindow(date, today time.Time) error {
	days := schedule.DaysBetween(today, date)
	if days < 0 || days < a.policy.MinAdvanceDays {
		return ErrOutsideBookingWindow
	}
	if a.policy.MaxAdvanceDays > 0 && days > a.policy.MaxAdvanceDays {
		return ErrOutsideBookingWindow
	}
	return nil
}

// CheckCancellationWindow requires date-today >= MinCancelDays.
func (a *Area) CheckCancellationWindow(date, today time.Time) error {
	if schedule.DaysBetween(today, date) < a.policy.MinCancelDays {
		return ErrCancellationTooLate
	}
	return nil
}

func (a *Area) CheckTerms(accepted bool) error {
	if a.flags.RequiresTerms && !accepted {
		return ErrTermsNotAccepted
	}
	return nil
}

func (a *Area) CheckGuests(guests int) error {
	if a.capacity > 0 && guests > a.capacity {
		return ErrCapacityExceeded
	}
	return nil
}
