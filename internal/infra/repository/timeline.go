package repository

import (
	"context"

	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TimelineRepository struct {
	db db.DBTX
}

func NewTimelineRepository(db db.DBTX) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func (r *TimelineRepository) Append(ctx context.Context, e timeline.Event) error {
	query, args, err := psql.Insert("timeline_events").
		Columns("id", "reservation_id", "action", "actor_id", "occurred_at", "note").
		Values(e.ID, e.ReservationID, string(e.Action), pgconv.UUIDPtrToPgtype(e.ActorID), e.OccurredAt, pgconv.StringPtrToPgtype(e.Note)).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build timeline insert", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to append timeline event", err)
	}
	return nil
}

func (r *TimelineRepository) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]timeline.Event, error) {
	query, args, err := psql.Select("id", "reservation_id", "action", "actor_id", "occurred_at", "note").
		From("timeline_events").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("occurred_at", "seq").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build timeline query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list timeline events", err)
	}
	defer rows.Close()

	events := make([]timeline.Event, 0)
	for rows.Next() {
		var (
			e       timeline.Event
			action  string
			actorID pgtype.UUID
			note    pgtype.Text
		)
		if err := rows.Scan(&e.ID, &e.ReservationID, &action, &actorID, &e.OccurredAt, &note); err != nil {
			return nil, infra.WrapRepoErr("failed to scan timeline event", err)
		}
		e.Action = timeline.Action(action)
		e.ActorID = pgconv.UUIDPtrFromPgtype(actorID)
		e.Note = pgconv.StringPtrFromPgtype(note)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate timeline events", err)
	}
	return events, nil
}
