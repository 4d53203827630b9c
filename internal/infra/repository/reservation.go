package repository

import (
	"context"
	"time"

	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var reservationColumns = []string{
	"id", "protocol", "area_id", "condominium_id", "unit_id", "resident_id",
	"date", "start_time", "end_time", "status", "guests", "terms_accepted", "exclusive",
	"created_at", "updated_at",
}

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(db db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	query, args, err := psql.Insert("reservations").
		Columns(reservationColumns...).
		Values(
			res.ID(), res.Protocol().String(), res.AreaID(), res.CondominiumID(), res.UnitID(), res.ResidentID(),
			pgconv.DateToPgtype(res.Date()),
			pgconv.ClockTimeToPgtype(res.Slot().Start), pgconv.ClockTimeToPgtype(res.Slot().End),
			res.Status().String(), res.Guests(), res.TermsAccepted(), res.Exclusive(),
			res.CreatedAt(), res.UpdatedAt(),
		).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build reservation insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	query, args, err := psql.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation query", err)
	}

	res, err := scanReservation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return res, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, res *reservation.Reservation) error {
	query, args, err := psql.Update("reservations").
		Set("status", res.Status().String()).
		Set("updated_at", res.UpdatedAt()).
		Where(squirrel.Eq{"id": res.ID()}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build reservation update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

// CountActive runs one indexed COUNT per call.
func (r *ReservationRepository) CountActive(ctx context.Context, f quota.Filter) (int, error) {
	q := psql.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"status": reservation.ActiveStatusStrings()}).
		Where(squirrel.GtOrEq{"date": pgconv.DateToPgtype(f.Window.From)}).
		Where(squirrel.LtOrEq{"date": pgconv.DateToPgtype(f.Window.To)})

	if f.Window.Slot != nil {
		q = q.Where(squirrel.Eq{
			"start_time": pgconv.ClockTimeToPgtype(f.Window.Slot.Start),
			"end_time":   pgconv.ClockTimeToPgtype(f.Window.Slot.End),
		})
	}
	if f.AreaID != nil {
		q = q.Where(squirrel.Eq{"area_id": *f.AreaID})
	}
	if f.CondominiumID != nil {
		q = q.Where(squirrel.Eq{"condominium_id": *f.CondominiumID})
	}
	if f.UnitID != nil {
		q = q.Where(squirrel.Eq{"unit_id": *f.UnitID})
	}
	if f.ResidentID != nil {
		q = q.Where(squirrel.Eq{"resident_id": *f.ResidentID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build count query", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations", err)
	}
	return count, nil
}

func (r *ReservationRepository) HasActive(ctx context.Context, areaID, residentID uuid.UUID) (bool, error) {
	query, args, err := psql.Select("1").
		From("reservations").
		Where(squirrel.Eq{
			"area_id":     areaID,
			"resident_id": residentID,
			"status":      reservation.ActiveStatusStrings(),
		}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build active reservation query", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check active reservations", err)
	}
	return exists, nil
}

func (r *ReservationRepository) ListConfirmedOn(ctx context.Context, date time.Time) ([]*reservation.Reservation, error) {
	query, args, err := psql.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"date": pgconv.DateToPgtype(date), "status": reservation.StatusConfirmed.String()}).
		OrderBy("start_time", "id").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build confirmed reservations query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list confirmed reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		p          reservation.ReconstructParams
		protocol   string
		status     string
		date       pgtype.Date
		start, end pgtype.Time
	)
	err := row.Scan(
		&p.ID, &protocol, &p.AreaID, &p.CondominiumID, &p.UnitID, &p.ResidentID,
		&date, &start, &end, &status, &p.Guests, &p.TermsAccepted, &p.Exclusive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Status, err = reservation.ParseStatus(status); err != nil {
		return nil, err
	}
	if p.Slot, err = pgconv.SlotFromPgtype(start, end); err != nil {
		return nil, err
	}
	p.Protocol = reservation.Protocol(protocol)
	p.Date = pgconv.DateFromPgtype(date)
	return reservation.Reconstruct(p), nil
}
