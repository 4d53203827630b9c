package queries

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation_mock.go -package=queriesmock

import (
	"context"
	"time"

	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/infra"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errs.New("invalid cursor")

// ListFilter narrows a resident's reservations by date. After is the keyset position.
type ListFilter struct {
	From  *time.Time
	To    *time.Time
	After *Cursor
	Limit int
}

// Keyset is a decoded cursor position, ordered by created_at then id, newest first.
type Keyset struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type ReservationQueries interface {
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReservationView, error)
	GetByProtocol(ctx context.Context, actor user.Actor, protocol reservation.Protocol) (*ReservationView, error)
	ListMine(ctx context.Context, actor user.Actor, filter ListFilter) ([]*ReservationView, *Cursor, error)
	Timeline(ctx context.Context, actor user.Actor, id uuid.UUID) ([]TimelineEventView, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByProtocol(ctx context.Context, protocol string) (*ReservationView, error)
	ListByResident(ctx context.Context, residentID uuid.UUID, from, to *time.Time, after *Keyset, limit int) ([]*ReservationView, error)
	TimelineByReservation(ctx context.Context, reservationID uuid.UUID) ([]TimelineEventView, error)
}

type reservationQueriesImpl struct {
	store ReservationReadStore
}

func NewReservationQueries(store ReservationReadStore) ReservationQueries {
	return &reservationQueriesImpl{store: store}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReservationView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !actor.CanAccess(view.ResidentID) {
		return nil, shared.ErrForbidden
	}
	return view, nil
}

func (q *reservationQueriesImpl) GetByProtocol(ctx context.Context, actor user.Actor, protocol reservation.Protocol) (*ReservationView, error) {
	view, err := q.store.FindByProtocol(ctx, protocol.String())
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !actor.CanAccess(view.ResidentID) {
		return nil, shared.ErrForbidden
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListMine(ctx context.Context, actor user.Actor, filter ListFilter) ([]*ReservationView, *Cursor, error) {
	limit := ValidateLimit(filter.Limit)

	var after *Keyset
	if filter.After != nil && filter.After.After != "" {
		createdAt, id, err := DecodeAfterCursor(filter.After.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		after = &Keyset{CreatedAt: createdAt, ID: id}
	}

	// One extra row tells whether another page exists.
	rows, err := q.store.ListByResident(ctx, actor.ID, filter.From, filter.To, after, limit+1)
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}

func (q *reservationQueriesImpl) Timeline(ctx context.Context, actor user.Actor, id uuid.UUID) ([]TimelineEventView, error) {
	if _, err := q.GetByID(ctx, actor, id); err != nil {
		return nil, err
	}
	return q.store.TimelineByReservation(ctx, id)
}

func mapNotFound(err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, shared.ErrReservationNotFound)
	}
	return err
}
