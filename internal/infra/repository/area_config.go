package repository

import (
	"context"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AreaConfigRepository writes area configuration. Admission never uses it.
type AreaConfigRepository struct {
	db db.DBTX
}

func NewAreaConfigRepository(db db.DBTX) *AreaConfigRepository {
	return &AreaConfigRepository{db: db}
}

func (r *AreaConfigRepository) UpsertArea(ctx context.Context, a *area.Area) error {
	p, f, l := a.Policy(), a.Flags(), a.Limits()
	values := []any{
		a.ID(), a.CondominiumID(), a.Name(), a.IsActive(), a.Capacity(),
		p.MinAdvanceDays, p.MaxAdvanceDays, p.MinCancelDays,
		f.AutoConfirm, f.AllowMultiple, f.LockAfterBooking, f.RequiresTerms,
		l.Area.Slot, l.Area.Day, l.Area.Week, l.Area.Month, l.Area.Year,
		l.Unit.Slot, l.Unit.Day, l.Unit.Week, l.Unit.Month, l.Unit.Year,
		l.Resident.Slot, l.Resident.Day, l.Resident.Week, l.Resident.Month, l.Resident.Year,
		squirrel.Expr("NOW()"),
	}

	suffix := "ON CONFLICT (id) DO UPDATE SET "
	for i, col := range areaColumns[1:] {
		if i > 0 {
			suffix += ", "
		}
		suffix += col + " = EXCLUDED." + col
	}

	query, args, err := psql.Insert("areas").
		Columns(areaColumns...).
		Values(values...).
		Suffix(suffix).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build area upsert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to upsert area", err)
	}
	return nil
}

func (r *AreaConfigRepository) ReplaceSlots(ctx context.Context, areaID uuid.UUID, slots []schedule.TimeSlot) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM time_slots WHERE area_id = $1`, areaID); err != nil {
		return infra.WrapRepoErr("failed to clear time slots", err)
	}
	if len(slots) == 0 {
		return nil
	}

	insert := psql.Insert("time_slots").Columns("id", "area_id", "start_time", "end_time", "weekdays")
	for _, ts := range slots {
		id := ts.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		insert = insert.Values(id, areaID,
			pgconv.ClockTimeToPgtype(ts.Slot.Start), pgconv.ClockTimeToPgtype(ts.Slot.End), int16(ts.Weekdays))
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build time slot insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to insert time slots", err)
	}
	return nil
}

func (r *AreaConfigRepository) ReplaceBlocks(ctx context.Context, areaID uuid.UUID, blocks []schedule.BlockPeriod) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM block_periods WHERE area_id = $1`, areaID); err != nil {
		return infra.WrapRepoErr("failed to clear block periods", err)
	}
	if len(blocks) == 0 {
		return nil
	}

	insert := psql.Insert("block_periods").Columns("id", "area_id", "date_from", "date_to", "start_time", "end_time", "reason")
	for _, b := range blocks {
		id := b.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		var start, end pgtype.Time
		if b.Window != nil {
			start, end = pgconv.ClockTimeToPgtype(b.Window.Start), pgconv.ClockTimeToPgtype(b.Window.End)
		}
		insert = insert.Values(id, areaID, pgconv.DateToPgtype(b.From), pgconv.DateToPgtype(b.To), start, end, b.Reason)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build block period insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to insert block periods", err)
	}
	return nil
}

func (r *AreaConfigRepository) UpsertGlobalLimits(ctx context.Context, condominiumID uuid.UUID, limits quota.WindowLimits) error {
	const query = `
		INSERT INTO global_limits (condominium_id, limit_slot, limit_day, limit_week, limit_month, limit_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (condominium_id) DO UPDATE SET
			limit_slot = EXCLUDED.limit_slot,
			limit_day = EXCLUDED.limit_day,
			limit_week = EXCLUDED.limit_week,
			limit_month = EXCLUDED.limit_month,
			limit_year = EXCLUDED.limit_year`

	_, err := r.db.Exec(ctx, query, condominiumID, limits.Slot, limits.Day, limits.Week, limits.Month, limits.Year)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert global limits", err)
	}
	return nil
}
