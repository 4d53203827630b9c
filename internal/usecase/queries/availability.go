package queries

//go:generate mockgen -source=availability.go -destination=../../../tests/mock/queries/availability_mock.go -package=queriesmock

import (
	"context"
	"time"

	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/infra"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type AvailabilityQueries interface {
	ForDate(ctx context.Context, areaID uuid.UUID, date time.Time) (*AvailabilityView, error)
}

type availabilityQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewAvailabilityQueries(uow shared.UnitOfWork) AvailabilityQueries {
	return &availabilityQueriesImpl{uow: uow}
}

// ForDate lists the resolved slots with their live active counts.
func (q *availabilityQueriesImpl) ForDate(ctx context.Context, areaID uuid.UUID, date time.Time) (*AvailabilityView, error) {
	date = schedule.Date(date)
	view := &AvailabilityView{
		AreaID: areaID,
		Date:   schedule.FormatDate(date),
		Slots:  []SlotAvailability{},
	}

	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		a, err := tx.Areas().FindByID(ctx, areaID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, shared.ErrAreaNotFound)
			}
			return err
		}
		view.Bookable = a.IsActive()
		if !a.IsActive() {
			return nil
		}

		slots, err := tx.Areas().Slots(ctx, areaID)
		if err != nil {
			return err
		}
		blocks, err := tx.Areas().BlocksOn(ctx, areaID, date)
		if err != nil {
			return err
		}

		capacity := a.SlotCapacity()
		for _, ts := range schedule.Resolve(slots, blocks, date) {
			active, err := tx.Reservations().CountActive(ctx, quota.FilterFor(quota.DimensionSlot, quota.ScopeArea, quota.Anchor{
				AreaID: areaID,
				Date:   date,
				Slot:   ts.Slot,
			}))
			if err != nil {
				return err
			}

			item := SlotAvailability{
				Start:     ts.Slot.Start.String(),
				End:       ts.Slot.End.String(),
				Active:    active,
				Available: true,
			}
			if capacity > 0 {
				remaining := max(capacity-active, 0)
				item.Remaining = &remaining
				item.Available = remaining > 0
			}
			view.Slots = append(view.Slots, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
