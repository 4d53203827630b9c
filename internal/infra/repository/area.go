package repository

import (
	"context"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var areaColumns = []string{
	"id", "condominium_id", "name", "active", "capacity",
	"min_advance_days", "max_advance_days", "min_cancel_days",
	"auto_confirm", "allow_multiple", "lock_after_booking", "requires_terms",
	"limit_area_slot", "limit_area_day", "limit_area_week", "limit_area_month", "limit_area_year",
	"limit_unit_slot", "limit_unit_day", "limit_unit_week", "limit_unit_month", "limit_unit_year",
	"limit_resident_slot", "limit_resident_day", "limit_resident_week", "limit_resident_month", "limit_resident_year",
	"updated_at",
}

type AreaRepository struct {
	db db.DBTX
}

func NewAreaRepository(db db.DBTX) *AreaRepository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*area.Area, error) {
	query, args, err := psql.Select(areaColumns...).
		From("areas").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build area query", err)
	}

	a, err := scanArea(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("area not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find area by ID", err)
	}
	return a, nil
}

func scanArea(row pgx.Row) (*area.Area, error) {
	var (
		p         area.Params
		updatedAt time.Time
	)
	err := row.Scan(
		&p.ID, &p.CondominiumID, &p.Name, &p.Active, &p.Capacity,
		&p.Policy.MinAdvanceDays, &p.Policy.MaxAdvanceDays, &p.Policy.MinCancelDays,
		&p.Flags.AutoConfirm, &p.Flags.AllowMultiple, &p.Flags.LockAfterBooking, &p.Flags.RequiresTerms,
		&p.Limits.Area.Slot, &p.Limits.Area.Day, &p.Limits.Area.Week, &p.Limits.Area.Month, &p.Limits.Area.Year,
		&p.Limits.Unit.Slot, &p.Limits.Unit.Day, &p.Limits.Unit.Week, &p.Limits.Unit.Month, &p.Limits.Unit.Year,
		&p.Limits.Resident.Slot, &p.Limits.Resident.Day, &p.Limits.Resident.Week, &p.Limits.Resident.Month, &p.Limits.Resident.Year,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return area.Reconstruct(p, updatedAt), nil
}

func (r *AreaRepository) Slots(ctx context.Context, areaID uuid.UUID) ([]schedule.TimeSlot, error) {
	query, args, err := psql.Select("id", "area_id", "start_time", "end_time", "weekdays").
		From("time_slots").
		Where(squirrel.Eq{"area_id": areaID}).
		OrderBy("start_time", "end_time").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build time slot query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list time slots", err)
	}
	defer rows.Close()

	var slots []schedule.TimeSlot
	for rows.Next() {
		var (
			ts         schedule.TimeSlot
			start, end pgtype.Time
			weekdays   int16
		)
		if err := rows.Scan(&ts.ID, &ts.AreaID, &start, &end, &weekdays); err != nil {
			return nil, infra.WrapRepoErr("failed to scan time slot", err)
		}
		if ts.Slot, err = pgconv.SlotFromPgtype(start, end); err != nil {
			return nil, infra.WrapRepoErr("invalid stored time slot", err)
		}
		// #nosec G115 -- the column holds a 7-bit mask
		ts.Weekdays = schedule.WeekdaySet(weekdays)
		slots = append(slots, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate time slots", err)
	}
	return slots, nil
}

func (r *AreaRepository) BlocksOn(ctx context.Context, areaID uuid.UUID, date time.Time) ([]schedule.BlockPeriod, error) {
	day := pgconv.DateToPgtype(date)
	query, args, err := psql.Select("id", "area_id", "date_from", "date_to", "start_time", "end_time", "reason").
		From("block_periods").
		Where(squirrel.Eq{"area_id": areaID}).
		Where(squirrel.LtOrEq{"date_from": day}).
		Where(squirrel.GtOrEq{"date_to": day}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build block period query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list block periods", err)
	}
	defer rows.Close()

	var blocks []schedule.BlockPeriod
	for rows.Next() {
		var (
			b          schedule.BlockPeriod
			from, to   pgtype.Date
			start, end pgtype.Time
		)
		if err := rows.Scan(&b.ID, &b.AreaID, &from, &to, &start, &end, &b.Reason); err != nil {
			return nil, infra.WrapRepoErr("failed to scan block period", err)
		}
		b.From, b.To = pgconv.DateFromPgtype(from), pgconv.DateFromPgtype(to)
		if start.Valid && end.Valid {
			window, err := pgconv.SlotFromPgtype(start, end)
			if err != nil {
				return nil, infra.WrapRepoErr("invalid stored block window", err)
			}
			b.Window = &window
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate block periods", err)
	}
	return blocks, nil
}

func (r *AreaRepository) GlobalLimits(ctx context.Context, condominiumID uuid.UUID) (quota.WindowLimits, error) {
	query, args, err := psql.Select("limit_slot", "limit_day", "limit_week", "limit_month", "limit_year").
		From("global_limits").
		Where(squirrel.Eq{"condominium_id": condominiumID}).
		ToSql()
	if err != nil {
		return quota.WindowLimits{}, infra.WrapRepoErr("failed to build global limit query", err)
	}

	var w quota.WindowLimits
	err = r.db.QueryRow(ctx, query, args...).Scan(&w.Slot, &w.Day, &w.Week, &w.Month, &w.Year)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return quota.WindowLimits{}, nil
		}
		return quota.WindowLimits{}, infra.WrapRepoErr("failed to load global limits", err)
	}
	return w, nil
}
