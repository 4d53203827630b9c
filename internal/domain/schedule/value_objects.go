package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidClockTime = errors.New("invalid clock time")
	ErrInvalidSlot      = errors.New("slot start must be before end")
	ErrInvalidWeekday   = errors.New("invalid weekday")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPeriod    = errors.New("block period end must not precede start")
)

const DateLayout = "2006-01-02"

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidClockTime
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClockTime accepts exactly "HH:MM" or "HH:MM:00".
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidClockTime
	}
	fields := make([]int, len(parts))
	for i, p := range parts {
		n, ok := twoDigits(p)
		if !ok {
			return 0, ErrInvalidClockTime
		}
		fields[i] = n
	}
	if len(fields) == 3 && fields[2] != 0 {
		return 0, ErrInvalidClockTime
	}
	return NewClockTime(fields[0], fields[1])
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Slot is a [Start, End) range within one day.
type Slot struct {
	Start ClockTime
	End   ClockTime
}

func NewSlot(start, end ClockTime) (Slot, error) {
	if start >= end {
		return Slot{}, ErrInvalidSlot
	}
	return Slot{Start: start, End: end}, nil
}

func ParseSlot(start, end string) (Slot, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return Slot{}, err
	}
	return NewSlot(s, e)
}

func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// WeekdaySet is a bitmask indexed by time.Weekday.
type WeekdaySet uint8

const AllWeekdays WeekdaySet = 0x7F

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"dom": time.Sunday,
	"seg": time.Monday,
	"ter": time.Tuesday,
	"qua": time.Wednesday,
	"qui": time.Thursday,
	"sex": time.Friday,
	"sab": time.Saturday,
}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, d := range days {
		set |= 1 << uint(d)
	}
	return set
}

func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, n)
		}
		set |= 1 << uint(d)
	}
	return set, nil
}

func (w WeekdaySet) Contains(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

func (w WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Date truncates t to its calendar date, expressed at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween counts calendar days from one date to another; negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}

// Today returns the calendar date of now as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(now.In(loc))
}
