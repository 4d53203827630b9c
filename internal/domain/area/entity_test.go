//go:build unit

package area_test

import (
	"testing"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestNew(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*builder.AreaBuilder)
		errIs  error
	}{
		{name: "valid area"},
		{name: "blank name", mutate: func(b *builder.AreaBuilder) { b.Name = "  " }, errIs: area.ErrEmptyName},
		{name: "negative capacity", mutate: func(b *builder.AreaBuilder) { b.Capacity = -1 }, errIs: area.ErrInvalidCapacity},
		{
			name:   "min beyond max",
			mutate: func(b *builder.AreaBuilder) { b.Policy = area.Policy{MinAdvanceDays: 10, MaxAdvanceDays: 5} },
			errIs:  area.ErrInvalidPolicy,
		},
		{
			name:   "negative limit",
			mutate: func(b *builder.AreaBuilder) { b.Limits = quota.AreaLimits{Unit: quota.WindowLimits{Month: -1}} },
			errIs:  area.ErrInvalidPolicy,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewAreaBuilder()
			if tc.mutate != nil {
				b.With(tc.mutate)
			}
			a, err := b.BuildDomain()
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, b.Name, a.Name())
		})
	}
}

func TestCheckBookingWindow(t *testing.T) {
	a := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Policy = area.Policy{MinAdvanceDays: 1, MaxAdvanceDays: 30}
	}).MustBuildDomain()
	today := day("2026-01-01")

	assert.ErrorIs(t, a.CheckBookingWindow(day("2025-12-31"), today), area.ErrOutsideBookingWindow, "past date")
	assert.ErrorIs(t, a.CheckBookingWindow(today, today), area.ErrOutsideBookingWindow, "below minimum")
	assert.NoError(t, a.CheckBookingWindow(day("2026-01-02"), today), "exactly minimum")
	assert.NoError(t, a.CheckBookingWindow(day("2026-01-31"), today), "exactly maximum")
	assert.ErrorIs(t, a.CheckBookingWindow(day("2026-02-01"), today), area.ErrOutsideBookingWindow, "one day beyond maximum")

	open := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Policy = area.Policy{}
	}).MustBuildDomain()
	assert.NoError(t, open.CheckBookingWindow(day("2027-06-01"), today), "zero maximum is unbounded")
	assert.NoError(t, open.CheckBookingWindow(today, today))
}

func TestCheckCancellationWindow(t *testing.T) {
	a := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Policy = area.Policy{MinCancelDays: 2}
	}).MustBuildDomain()
	today := day("2026-03-01")

	assert.ErrorIs(t, a.CheckCancellationWindow(day("2026-03-02"), today), area.ErrCancellationTooLate)
	assert.NoError(t, a.CheckCancellationWindow(day("2026-03-03"), today))
	assert.NoError(t, a.CheckCancellationWindow(day("2026-03-05"), today))
}

func TestFlagsAndCapacity(t *testing.T) {
	exclusive := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Flags.AllowMultiple = false
		b.Limits.Area.Slot = 5
	}).MustBuildDomain()
	assert.Equal(t, 1, exclusive.SlotCapacity())
	assert.True(t, exclusive.IsExclusive())

	shared := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Flags.AllowMultiple = true
		b.Limits.Area.Slot = 5
		b.Flags.RequiresTerms = true
		b.Capacity = 20
	}).MustBuildDomain()
	assert.Equal(t, 5, shared.SlotCapacity())
	assert.ErrorIs(t, shared.CheckTerms(false), area.ErrTermsNotAccepted)
	assert.NoError(t, shared.CheckTerms(true))
	assert.NoError(t, shared.CheckGuests(20))
	assert.ErrorIs(t, shared.CheckGuests(21), area.ErrCapacityExceeded)
}
