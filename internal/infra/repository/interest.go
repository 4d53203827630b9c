package repository

import (
	"context"
	"time"

	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/waitlist"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var interestColumns = []string{
	"id", "area_id", "resident_id", "unit_id", "date", "start_time", "end_time", "status", "created_at", "notified_at",
}

type InterestRepository struct {
	db db.DBTX
}

func NewInterestRepository(db db.DBTX) *InterestRepository {
	return &InterestRepository{db: db}
}

func (r *InterestRepository) Create(ctx context.Context, e *waitlist.Entry) error {
	query, args, err := psql.Insert("interest_entries").
		Columns(interestColumns...).
		Values(
			e.ID(), e.AreaID(), e.ResidentID(), e.UnitID(), pgconv.DateToPgtype(e.Date()),
			pgconv.ClockTimeToPgtype(e.Slot().Start), pgconv.ClockTimeToPgtype(e.Slot().End),
			string(e.Status()), e.CreatedAt(), pgconv.TimePtrToPgtype(e.NotifiedAt()),
		).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build interest insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create interest entry", err)
	}
	return nil
}

func (r *InterestRepository) FindByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	query, args, err := psql.Select(interestColumns...).
		From("interest_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build interest query", err)
	}

	e, err := scanInterest(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find interest entry", err)
	}
	return e, nil
}

func (r *InterestRepository) ListForSlot(ctx context.Context, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error) {
	query, args, err := psql.Select(interestColumns...).
		From("interest_entries").
		Where(squirrel.Eq{
			"area_id":    areaID,
			"date":       pgconv.DateToPgtype(date),
			"start_time": pgconv.ClockTimeToPgtype(slot.Start),
			"end_time":   pgconv.ClockTimeToPgtype(slot.End),
		}).
		OrderBy("created_at", "id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build interest list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list interest entries", err)
	}
	defer rows.Close()

	entries := make([]*waitlist.Entry, 0)
	for rows.Next() {
		e, err := scanInterest(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan interest entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate interest entries", err)
	}
	return entries, nil
}

func (r *InterestRepository) MarkNotified(ctx context.Context, e *waitlist.Entry) error {
	query, args, err := psql.Update("interest_entries").
		Set("status", string(e.Status())).
		Set("notified_at", pgconv.TimePtrToPgtype(e.NotifiedAt())).
		Where(squirrel.Eq{"id": e.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build interest update", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to mark interest notified", err)
	}
	return nil
}

func (r *InterestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM interest_entries WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete interest entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("interest entry not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *InterestRepository) DeleteForResident(ctx context.Context, areaID, residentID uuid.UUID, date time.Time, slot schedule.Slot) error {
	query, args, err := psql.Delete("interest_entries").
		Where(squirrel.Eq{
			"area_id":     areaID,
			"resident_id": residentID,
			"date":        pgconv.DateToPgtype(date),
			"start_time":  pgconv.ClockTimeToPgtype(slot.Start),
			"end_time":    pgconv.ClockTimeToPgtype(slot.End),
		}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build interest delete", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to delete resident interest", err)
	}
	return nil
}

func (r *InterestRepository) DeleteBefore(ctx context.Context, date time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM interest_entries WHERE date < $1`, pgconv.DateToPgtype(date))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge interest entries", err)
	}
	return tag.RowsAffected(), nil
}

func scanInterest(row pgx.Row) (*waitlist.Entry, error) {
	var (
		id, areaID, residentID, unitID uuid.UUID
		date                           pgtype.Date
		start, end                     pgtype.Time
		status                         string
		createdAt                      time.Time
		notifiedAt                     pgtype.Timestamptz
	)
	if err := row.Scan(&id, &areaID, &residentID, &unitID, &date, &start, &end, &status, &createdAt, &notifiedAt); err != nil {
		return nil, err
	}
	slot, err := pgconv.SlotFromPgtype(start, end)
	if err != nil {
		return nil, err
	}
	return waitlist.Reconstruct(id, areaID, residentID, unitID, pgconv.DateFromPgtype(date), slot,
		waitlist.Status(status), createdAt, pgconv.TimePtrFromPgtype(notifiedAt)), nil
}
