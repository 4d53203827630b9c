package shared

import (
	"time"

	"github.com/google/uuid"
)

type IdempotencyRecord struct {
	Key           uuid.UUID
	ActorID       uuid.UUID
	RequestHash   string
	ReservationID uuid.UUID
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

func (r IdempotencyRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
