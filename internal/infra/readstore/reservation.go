package readstore

import (
	"context"
	"time"

	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"
	"condo-booking/internal/usecase/queries"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var reservationViewColumns = []string{
	"r.id", "r.protocol", "r.area_id", "a.name", "r.unit_id", "r.resident_id",
	"r.date", "r.start_time", "r.end_time", "r.status", "r.guests", "r.terms_accepted",
	"r.created_at", "r.updated_at",
}

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(db db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: db}
}

func (r *ReservationReadStore) base() squirrel.SelectBuilder {
	return psql.Select(reservationViewColumns...).
		From("reservations r").
		Join("areas a ON a.id = r.area_id")
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	return r.findOne(ctx, r.base().Where(squirrel.Eq{"r.id": id}))
}

func (r *ReservationReadStore) FindByProtocol(ctx context.Context, protocol string) (*queries.ReservationView, error) {
	return r.findOne(ctx, r.base().Where(squirrel.Eq{"r.protocol": protocol}))
}

func (r *ReservationReadStore) findOne(ctx context.Context, b squirrel.SelectBuilder) (*queries.ReservationView, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation view query", err)
	}

	view, err := scanReservationView(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return view, nil
}

func (r *ReservationReadStore) ListByResident(ctx context.Context, residentID uuid.UUID, from, to *time.Time, after *queries.Keyset, limit int) ([]*queries.ReservationView, error) {
	b := r.base().Where(squirrel.Eq{"r.resident_id": residentID})
	if from != nil {
		b = b.Where(squirrel.GtOrEq{"r.date": pgconv.DateToPgtype(*from)})
	}
	if to != nil {
		b = b.Where(squirrel.LtOrEq{"r.date": pgconv.DateToPgtype(*to)})
	}
	if after != nil {
		b = b.Where(squirrel.Expr("(r.created_at, r.id) < (?, ?)", after.CreatedAt, after.ID))
	}

	// #nosec G115 -- limit is bounded by queries.MaxListLimit
	query, args, err := b.OrderBy("r.created_at DESC", "r.id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build reservation list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	result := make([]*queries.ReservationView, 0, limit)
	for rows.Next() {
		view, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return result, nil
}

func (r *ReservationReadStore) TimelineByReservation(ctx context.Context, reservationID uuid.UUID) ([]queries.TimelineEventView, error) {
	query, args, err := psql.Select("id", "action", "actor_id", "occurred_at", "note").
		From("timeline_events").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("occurred_at", "seq").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build timeline query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list timeline", err)
	}
	defer rows.Close()

	events := make([]queries.TimelineEventView, 0)
	for rows.Next() {
		var (
			e       queries.TimelineEventView
			actorID pgtype.UUID
			note    pgtype.Text
		)
		if err := rows.Scan(&e.ID, &e.Action, &actorID, &e.OccurredAt, &note); err != nil {
			return nil, infra.WrapRepoErr("failed to scan timeline event", err)
		}
		e.ActorID = pgconv.UUIDPtrFromPgtype(actorID)
		e.Note = pgconv.StringPtrFromPgtype(note)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate timeline", err)
	}
	return events, nil
}

func scanReservationView(row pgx.Row) (*queries.ReservationView, error) {
	var (
		v          queries.ReservationView
		date       pgtype.Date
		start, end pgtype.Time
	)
	err := row.Scan(&v.ID, &v.Protocol, &v.AreaID, &v.AreaName, &v.UnitID, &v.ResidentID,
		&date, &start, &end, &v.Status, &v.Guests, &v.TermsAccepted, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	slot, err := pgconv.SlotFromPgtype(start, end)
	if err != nil {
		return nil, err
	}
	v.Date = schedule.FormatDate(pgconv.DateFromPgtype(date))
	v.Start, v.End = slot.Start.String(), slot.End.String()
	return &v, nil
}
