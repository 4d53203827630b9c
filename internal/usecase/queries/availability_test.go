//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/queries"
	"condo-booking/internal/usecase/shared"
	"condo-booking/tests/common/builder"
	"condo-booking/tests/common/memuow"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seededAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, uow *memuow.UoW, ab *builder.AreaBuilder, blocks []schedule.BlockPeriod, rbs ...*builder.ReservationBuilder) {
	t.Helper()
	ctx := context.Background()
	a := ab.MustBuildDomain()
	uow.Seed(func(tx shared.Tx) error {
		if err := tx.AreaConfig().UpsertArea(ctx, a); err != nil {
			return err
		}
		if err := tx.AreaConfig().ReplaceSlots(ctx, a.ID(), ab.BuildTimeSlots()); err != nil {
			return err
		}
		if err := tx.AreaConfig().ReplaceBlocks(ctx, a.ID(), blocks); err != nil {
			return err
		}
		for i, rb := range rbs {
			rb.Protocol = reservation.Protocol("AVAXB0000" + string(rune('0'+i)))
			res, err := rb.BuildDomain(seededAt)
			if err != nil {
				return err
			}
			if err := tx.Reservations().Create(ctx, res); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestAvailabilityQueries_ForDate(t *testing.T) {
	ctx := context.Background()
	date := builder.MustDate("2026-03-10")

	t.Run("shared area reports remaining capacity per slot", func(t *testing.T) {
		uow := memuow.New(0)
		ab := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
			b.Flags = area.Flags{AllowMultiple: true}
			b.Limits = quota.AreaLimits{Area: quota.WindowLimits{Slot: 2}}
			b.Slots = []schedule.Slot{builder.MustSlot("08:00", "10:00"), builder.MustSlot("10:00", "12:00")}
		})
		rb := builder.NewReservationBuilder().ForArea(ab)
		rb.Slot = builder.MustSlot("10:00", "12:00")
		seed(t, uow, ab, nil, rb)

		view, err := queries.NewAvailabilityQueries(uow).ForDate(ctx, ab.ID, date)
		require.NoError(t, err)
		assert.True(t, view.Bookable)

		one, two := 1, 2
		want := []queries.SlotAvailability{
			{Start: "08:00", End: "10:00", Active: 0, Remaining: &two, Available: true},
			{Start: "10:00", End: "12:00", Active: 1, Remaining: &one, Available: true},
		}
		if diff := cmp.Diff(want, view.Slots); diff != "" {
			t.Errorf("slots mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("exclusive slot with a live reservation is unavailable", func(t *testing.T) {
		uow := memuow.New(0)
		ab := builder.NewAreaBuilder()
		seed(t, uow, ab, nil, builder.NewReservationBuilder().ForArea(ab))

		view, err := queries.NewAvailabilityQueries(uow).ForDate(ctx, ab.ID, date)
		require.NoError(t, err)
		require.Len(t, view.Slots, 1)
		assert.False(t, view.Slots[0].Available)
		assert.Equal(t, 0, *view.Slots[0].Remaining)
	})

	t.Run("blocked day resolves no slots", func(t *testing.T) {
		uow := memuow.New(0)
		ab := builder.NewAreaBuilder()
		block, err := schedule.NewBlockPeriod(ab.ID, date, date, nil, "manutencao")
		require.NoError(t, err)
		seed(t, uow, ab, []schedule.BlockPeriod{block})

		view, err := queries.NewAvailabilityQueries(uow).ForDate(ctx, ab.ID, date)
		require.NoError(t, err)
		assert.True(t, view.Bookable)
		assert.Empty(t, view.Slots)
	})

	t.Run("inactive area is not bookable", func(t *testing.T) {
		uow := memuow.New(0)
		ab := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) { b.Active = false })
		seed(t, uow, ab, nil)

		view, err := queries.NewAvailabilityQueries(uow).ForDate(ctx, ab.ID, date)
		require.NoError(t, err)
		assert.False(t, view.Bookable)
		assert.Empty(t, view.Slots)
	})

	t.Run("unknown area", func(t *testing.T) {
		_, err := queries.NewAvailabilityQueries(memuow.New(0)).ForDate(ctx, uuid.New(), date)
		assert.True(t, errs.Is(err, shared.ErrAreaNotFound), "got %v", err)
	})
}
