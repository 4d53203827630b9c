//go:build unit

package quota_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) CountActive(ctx context.Context, f quota.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowFor(t *testing.T) {
	slot, err := schedule.ParseSlot("10:00", "12:00")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		dim      quota.Dimension
		date     time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"dia is the date", quota.DimensionDay, date(2026, 2, 1), date(2026, 2, 1), date(2026, 2, 1)},
		{"semana from a Sunday reaches back to Monday", quota.DimensionWeek, date(2026, 2, 1), date(2026, 1, 26), date(2026, 2, 1)},
		{"semana from a Monday", quota.DimensionWeek, date(2026, 2, 2), date(2026, 2, 2), date(2026, 2, 8)},
		{"semana across the year boundary", quota.DimensionWeek, date(2026, 1, 1), date(2025, 12, 29), date(2026, 1, 4)},
		{"mes in a leap year", quota.DimensionMonth, date(2028, 2, 15), date(2028, 2, 1), date(2028, 2, 29)},
		{"ano", quota.DimensionYear, date(2026, 7, 4), date(2026, 1, 1), date(2026, 12, 31)},
		{"horario", quota.DimensionSlot, date(2026, 1, 10), date(2026, 1, 10), date(2026, 1, 10)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := quota.WindowFor(tc.dim, tc.date, slot)
			assert.Equal(t, tc.wantFrom, w.From)
			assert.Equal(t, tc.wantTo, w.To)
			assert.Equal(t, tc.dim == quota.DimensionSlot, w.Slot != nil)
			assert.True(t, w.Contains(tc.date, slot))
		})
	}

	t.Run("horario window excludes other slots on the same date", func(t *testing.T) {
		other, err := schedule.ParseSlot("14:00", "16:00")
		require.NoError(t, err)
		w := quota.WindowFor(quota.DimensionSlot, date(2026, 1, 10), slot)
		assert.False(t, w.Contains(date(2026, 1, 10), other))
	})
}

func TestFilterFor(t *testing.T) {
	a := quota.Anchor{
		AreaID:        uuid.New(),
		CondominiumID: uuid.New(),
		UnitID:        uuid.New(),
		ResidentID:    uuid.New(),
		Date:          date(2026, 2, 1),
	}

	f := quota.FilterFor(quota.DimensionDay, quota.ScopeArea, a)
	require.NotNil(t, f.AreaID)
	assert.Nil(t, f.UnitID)
	assert.Nil(t, f.ResidentID)

	f = quota.FilterFor(quota.DimensionDay, quota.ScopeUnit, a)
	assert.Equal(t, a.UnitID, *f.UnitID)
	assert.Equal(t, a.AreaID, *f.AreaID)

	f = quota.FilterFor(quota.DimensionDay, quota.ScopeResident, a)
	assert.Equal(t, a.ResidentID, *f.ResidentID)

	f = quota.FilterFor(quota.DimensionDay, quota.ScopeGlobal, a)
	assert.Nil(t, f.AreaID, "global limits span every area")
	assert.Equal(t, a.CondominiumID, *f.CondominiumID)
	assert.Equal(t, a.UnitID, *f.UnitID)
}

func TestChecks(t *testing.T) {
	area := quota.AreaLimits{
		Area:     quota.WindowLimits{Slot: 1},
		Resident: quota.WindowLimits{Day: 2, Month: 4},
	}
	global := quota.WindowLimits{Week: 3}

	got := quota.Checks(area, global)
	assert.Equal(t, []quota.Check{
		{Scope: quota.ScopeArea, Dimension: quota.DimensionSlot, Limit: 1},
		{Scope: quota.ScopeResident, Dimension: quota.DimensionDay, Limit: 2},
		{Scope: quota.ScopeResident, Dimension: quota.DimensionMonth, Limit: 4},
		{Scope: quota.ScopeGlobal, Dimension: quota.DimensionWeek, Limit: 3},
	}, got)

	assert.Empty(t, quota.Checks(quota.AreaLimits{}, quota.WindowLimits{}))
}

func TestLedger_Enforce(t *testing.T) {
	ctx := context.Background()
	anchor := quota.Anchor{AreaID: uuid.New(), ResidentID: uuid.New(), UnitID: uuid.New(), Date: date(2026, 2, 1)}
	checks := []quota.Check{
		{Scope: quota.ScopeResident, Dimension: quota.DimensionDay, Limit: 2},
		{Scope: quota.ScopeGlobal, Dimension: quota.DimensionMonth, Limit: 10},
	}

	t.Run("resident already at the daily cap", func(t *testing.T) {
		counter := new(MockCounter)
		counter.On("CountActive", ctx, mock.MatchedBy(func(f quota.Filter) bool { return f.ResidentID != nil })).
			Return(2, nil).Once()

		err := quota.NewLedger(counter).Enforce(ctx, checks, anchor)

		require.ErrorIs(t, err, quota.ErrQuotaExceeded)
		var exceeded *quota.ExceededError
		require.True(t, errors.As(err, &exceeded))
		assert.Equal(t, quota.DimensionDay, exceeded.Dimension)
		assert.Equal(t, quota.ScopeResident, exceeded.Scope)
		assert.Equal(t, 2, exceeded.Limit)
		assert.Equal(t, 2, exceeded.Current)
		counter.AssertExpectations(t)
	})

	t.Run("every cap has room", func(t *testing.T) {
		counter := new(MockCounter)
		counter.On("CountActive", ctx, mock.Anything).Return(1, nil).Twice()

		require.NoError(t, quota.NewLedger(counter).Enforce(ctx, checks, anchor))
		counter.AssertExpectations(t)
	})

	t.Run("counter failure is propagated", func(t *testing.T) {
		counter := new(MockCounter)
		boom := errors.New("connection reset")
		counter.On("CountActive", ctx, mock.Anything).Return(0, boom).Once()

		err := quota.NewLedger(counter).Enforce(ctx, checks, anchor)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, quota.ErrQuotaExceeded)
	})

	t.Run("invalid dimension or scope", func(t *testing.T) {
		ledger := quota.NewLedger(new(MockCounter))
		_, err := ledger.CountActive(ctx, quota.Dimension("quinzena"), quota.ScopeArea, anchor)
		assert.ErrorIs(t, err, quota.ErrInvalidDimension)
		_, err = ledger.CountActive(ctx, quota.DimensionDay, quota.Scope("bloco"), anchor)
		assert.ErrorIs(t, err, quota.ErrInvalidScope)
	})
}
