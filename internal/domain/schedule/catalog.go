package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a recurring slot configured for an area.
type TimeSlot struct {
	ID       uuid.UUID
	AreaID   uuid.UUID
	Slot     Slot
	Weekdays WeekdaySet
}

// BlockPeriod makes an area unbookable between From and To (inclusive dates).
// A nil Window blocks the whole day; otherwise only overlapping slots are blocked.
type BlockPeriod struct {
	ID     uuid.UUID
	AreaID uuid.UUID
	From   time.Time
	To     time.Time
	Window *Slot
	Reason string
}

func NewBlockPeriod(areaID uuid.UUID, from, to time.Time, window *Slot, reason string) (BlockPeriod, error) {
	from, to = Date(from), Date(to)
	if to.Before(from) {
		return BlockPeriod{}, ErrInvalidPeriod
	}
	return BlockPeriod{
		ID:     uuid.New(),
		AreaID: areaID,
		From:   from,
		To:     to,
		Window: window,
		Reason: reason,
	}, nil
}

func (b BlockPeriod) CoversDate(date time.Time) bool {
	d := Date(date)
	return !d.Before(b.From) && !d.After(b.To)
}

func (b BlockPeriod) Covers(date time.Time, slot Slot) bool {
	if !b.CoversDate(date) {
		return false
	}
	return b.Window == nil || b.Window.Overlaps(slot)
}

// Resolve returns the slots bookable on date, ordered by start then end.
// It never returns nil.
func Resolve(slots []TimeSlot, blocks []BlockPeriod, date time.Time) []TimeSlot {
	resolved := make([]TimeSlot, 0, len(slots))
	weekday := Date(date).Weekday()

	for _, ts := range slots {
		if !ts.Weekdays.Contains(weekday) {
			continue
		}
		if blocked(blocks, date, ts.Slot) {
			continue
		}
		resolved = append(resolved, ts)
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Slot.Start != resolved[j].Slot.Start {
			return resolved[i].Slot.Start < resolved[j].Slot.Start
		}
		return resolved[i].Slot.End < resolved[j].Slot.End
	})
	return resolved
}

// Find matches slot exactly on start and end.
func Find(resolved []TimeSlot, slot Slot) (TimeSlot, bool) {
	for _, ts := range resolved {
		if ts.Slot == slot {
			return ts, true
		}
	}
	return TimeSlot{}, false
}

func blocked(blocks []BlockPeriod, date time.Time, slot Slot) bool {
	for _, b := range blocks {
		if b.Covers(date, slot) {
			return true
		}
	}
	return false
}
