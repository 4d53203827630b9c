package timeline

import (
	"errors"
	"time"

	"condo-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

var ErrInvalidAction = errors.New("invalid timeline action")

type Action string

const (
	ActionCreated   Action = "criada"
	ActionConfirmed Action = "confirmada"
	ActionCancelled Action = "cancelada"
	ActionUsed      Action = "utilizada"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCreated, ActionConfirmed, ActionCancelled, ActionUsed:
		return true
	default:
		return false
	}
}

// ActionFor names the event recorded when a reservation enters status.
func ActionFor(status reservation.Status) (Action, error) {
	switch status {
	case reservation.StatusPending:
		return ActionCreated, nil
	case reservation.StatusConfirmed:
		return ActionConfirmed, nil
	case reservation.StatusCancelled:
		return ActionCancelled, nil
	case reservation.StatusUsed:
		return ActionUsed, nil
	default:
		return "", ErrInvalidAction
	}
}

// Event is append-only.
type Event struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	Action        Action
	ActorID       *uuid.UUID
	OccurredAt    time.Time
	Note          *string
}

func NewEvent(reservationID uuid.UUID, action Action, actorID *uuid.UUID, at time.Time, note *string) (Event, error) {
	if !action.IsValid() {
		return Event{}, ErrInvalidAction
	}
	if note != nil && *note == "" {
		note = nil
	}
	return Event{
		ID:            uuid.New(),
		ReservationID: reservationID,
		Action:        action,
		ActorID:       actorID,
		OccurredAt:    at,
		Note:          note,
	}, nil
}
