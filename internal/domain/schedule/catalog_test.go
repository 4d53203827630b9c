//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T, start, end string) schedule.Slot {
	t.Helper()
	s, err := schedule.ParseSlot(start, end)
	require.NoError(t, err)
	return s
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := schedule.ParseDate(s)
	require.NoError(t, err)
	return d
}

func slotStrings(slots []schedule.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Slot.String())
	}
	return out
}

func TestResolve(t *testing.T) {
	areaID := uuid.New()
	weekend := schedule.NewWeekdaySet(time.Saturday, time.Sunday)
	slots := []schedule.TimeSlot{
		{ID: uuid.New(), AreaID: areaID, Slot: mustSlot(t, "18:00", "22:00"), Weekdays: schedule.AllWeekdays},
		{ID: uuid.New(), AreaID: areaID, Slot: mustSlot(t, "10:00", "12:00"), Weekdays: schedule.AllWeekdays},
		{ID: uuid.New(), AreaID: areaID, Slot: mustSlot(t, "14:00", "17:00"), Weekdays: weekend},
	}

	// 2026-01-10 is a Saturday, 2026-01-12 a Monday.
	testCases := []struct {
		name   string
		blocks []schedule.BlockPeriod
		date   string
		want   []string
	}{
		{
			name: "weekday filter drops weekend-only slot",
			date: "2026-01-12",
			want: []string{"10:00-12:00", "18:00-22:00"},
		},
		{
			name: "weekend keeps all slots ordered by start",
			date: "2026-01-10",
			want: []string{"10:00-12:00", "14:00-17:00", "18:00-22:00"},
		},
		{
			name: "whole-day block empties the day",
			blocks: []schedule.BlockPeriod{
				{AreaID: areaID, From: mustDate(t, "2026-01-09"), To: mustDate(t, "2026-01-10")},
			},
			date: "2026-01-10",
			want: []string{},
		},
		{
			name: "partial block removes overlapping slots only",
			blocks: func() []schedule.BlockPeriod {
				w := mustSlot(t, "11:00", "15:00")
				return []schedule.BlockPeriod{{AreaID: areaID, From: mustDate(t, "2026-01-10"), To: mustDate(t, "2026-01-10"), Window: &w}}
			}(),
			date: "2026-01-10",
			want: []string{"18:00-22:00"},
		},
		{
			name: "block outside the date is ignored",
			blocks: []schedule.BlockPeriod{
				{AreaID: areaID, From: mustDate(t, "2026-01-11"), To: mustDate(t, "2026-01-20")},
			},
			date: "2026-01-10",
			want: []string{"10:00-12:00", "14:00-17:00", "18:00-22:00"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := schedule.Resolve(slots, tc.blocks, mustDate(t, tc.date))
			require.NotNil(t, got)
			if diff := cmp.Diff(tc.want, slotStrings(got)); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFind(t *testing.T) {
	resolved := []schedule.TimeSlot{{Slot: mustSlot(t, "10:00", "12:00")}}

	_, ok := schedule.Find(resolved, mustSlot(t, "10:00", "12:00"))
	assert.True(t, ok)

	_, ok = schedule.Find(resolved, mustSlot(t, "10:00", "11:00"))
	assert.False(t, ok, "match must be exact on start and end")
}

func TestValueObjects(t *testing.T) {
	t.Run("clock time parsing", func(t *testing.T) {
		c, err := schedule.ParseClockTime("09:30")
		require.NoError(t, err)
		assert.Equal(t, "09:30", c.String())

		c, err = schedule.ParseClockTime("21:00:00")
		require.NoError(t, err)
		assert.Equal(t, 21*60, c.Minutes())

		for _, bad := range []string{"24:00", "10", "10:60", "aa:bb", "10:00:30",
			"10:00xyz", "+9:00", "9:00", "10:5", " 10:00", "10:00:", "-1:00", "10:00:00:00",
		} {
			_, err := schedule.ParseClockTime(bad)
			assert.ErrorIs(t, err, schedule.ErrInvalidClockTime, bad)
		}
	})

	t.Run("slot requires start before end", func(t *testing.T) {
		_, err := schedule.ParseSlot("12:00", "10:00")
		assert.ErrorIs(t, err, schedule.ErrInvalidSlot)
		_, err = schedule.ParseSlot("10:00", "10:00")
		assert.ErrorIs(t, err, schedule.ErrInvalidSlot)
	})

	t.Run("weekday names", func(t *testing.T) {
		set, err := schedule.ParseWeekdaySet([]string{"Mon", "sex", "sun"})
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Friday}, set.Days())

		_, err = schedule.ParseWeekdaySet([]string{"funday"})
		assert.ErrorIs(t, err, schedule.ErrInvalidWeekday)
	})

	t.Run("days between and today", func(t *testing.T) {
		assert.Equal(t, 4, schedule.DaysBetween(mustDate(t, "2026-03-01"), mustDate(t, "2026-03-05")))
		assert.Equal(t, -1, schedule.DaysBetween(mustDate(t, "2026-03-01"), mustDate(t, "2026-02-28")))

		loc := time.FixedZone("BRT", -3*60*60)
		now := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC) // 22:00 on 03-01 in BRT
		assert.Equal(t, mustDate(t, "2026-03-01"), schedule.Today(now, loc))
	})
}
