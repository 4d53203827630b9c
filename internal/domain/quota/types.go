package quota

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrInvalidDimension = errors.New("invalid quota dimension")
	ErrInvalidScope     = errors.New("invalid quota scope")
)

// Dimension is a counting window.
type Dimension string

const (
	DimensionSlot  Dimension = "horario"
	DimensionDay   Dimension = "dia"
	DimensionWeek  Dimension = "semana"
	DimensionMonth Dimension = "mes"
	DimensionYear  Dimension = "ano"
)

// Dimensions lists every window in check order.
func Dimensions() []Dimension {
	return []Dimension{DimensionSlot, DimensionDay, DimensionWeek, DimensionMonth, DimensionYear}
}

func (d Dimension) IsValid() bool {
	switch d {
	case DimensionSlot, DimensionDay, DimensionWeek, DimensionMonth, DimensionYear:
		return true
	default:
		return false
	}
}

// Scope says whose reservations are counted.
type Scope string

const (
	ScopeArea     Scope = "area"
	ScopeUnit     Scope = "unidade"
	ScopeResident Scope = "morador"
	ScopeGlobal   Scope = "global"
)

func (s Scope) IsValid() bool {
	switch s {
	case ScopeArea, ScopeUnit, ScopeResident, ScopeGlobal:
		return true
	default:
		return false
	}
}

// WindowLimits holds one cap per window. Zero means not configured.
type WindowLimits struct {
	Slot  int `toml:"horario"`
	Day   int `toml:"dia"`
	Week  int `toml:"semana"`
	Month int `toml:"mes"`
	Year  int `toml:"ano"`
}

func (w WindowLimits) Get(d Dimension) int {
	switch d {
	case DimensionSlot:
		return w.Slot
	case DimensionDay:
		return w.Day
	case DimensionWeek:
		return w.Week
	case DimensionMonth:
		return w.Month
	case DimensionYear:
		return w.Year
	default:
		return 0
	}
}

func (w WindowLimits) Validate() error {
	for _, d := range Dimensions() {
		if w.Get(d) < 0 {
			return fmt.Errorf("limit %s must not be negative", d)
		}
	}
	return nil
}

// AreaLimits are the per-area caps for the three area-level scopes.
type AreaLimits struct {
	Area     WindowLimits `toml:"area"`
	Unit     WindowLimits `toml:"unidade"`
	Resident WindowLimits `toml:"morador"`
}

func (a AreaLimits) For(s Scope) WindowLimits {
	switch s {
	case ScopeArea:
		return a.Area
	case ScopeUnit:
		return a.Unit
	case ScopeResident:
		return a.Resident
	default:
		return WindowLimits{}
	}
}

func (a AreaLimits) Validate() error {
	for _, s := range []Scope{ScopeArea, ScopeUnit, ScopeResident} {
		if err := a.For(s).Validate(); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
	}
	return nil
}

// ExceededError reports which cap a candidate reservation would break.
type ExceededError struct {
	Dimension Dimension
	Scope     Scope
	Limit     int
	Current   int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s/%s limit=%d current=%d", e.Scope, e.Dimension, e.Limit, e.Current)
}

func (e *ExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
