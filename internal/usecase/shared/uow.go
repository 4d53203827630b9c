package shared

import (
	"context"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/domain/waitlist"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: ReadCommitted transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinSerializable: Serializable transaction, retried on serialization failure and deadlock
	WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to one transaction.
type Tx interface {
	Areas() AreaRepository
	AreaConfig() AreaConfigRepository
	Reservations() ReservationRepository
	Timeline() TimelineRepository
	Interests() InterestRepository
	Notifications() NotificationRepository
	Idempotency() IdempotencyRepository
}

type AreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*area.Area, error)
	Slots(ctx context.Context, areaID uuid.UUID) ([]schedule.TimeSlot, error)
	BlocksOn(ctx context.Context, areaID uuid.UUID, date time.Time) ([]schedule.BlockPeriod, error)
	// GlobalLimits returns zero limits when the condominium has none configured.
	GlobalLimits(ctx context.Context, condominiumID uuid.UUID) (quota.WindowLimits, error)
}

// AreaConfigRepository is the configuration write side used by seeding.
type AreaConfigRepository interface {
	UpsertArea(ctx context.Context, a *area.Area) error
	ReplaceSlots(ctx context.Context, areaID uuid.UUID, slots []schedule.TimeSlot) error
	ReplaceBlocks(ctx context.Context, areaID uuid.UUID, blocks []schedule.BlockPeriod) error
	UpsertGlobalLimits(ctx context.Context, condominiumID uuid.UUID, limits quota.WindowLimits) error
}

type ReservationRepository interface {
	quota.Counter
	Create(ctx context.Context, r *reservation.Reservation) error
	// FindByID locks the row for the rest of the transaction.
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	UpdateStatus(ctx context.Context, r *reservation.Reservation) error
	// HasActive reports any pendente, confirmada or utilizada reservation, regardless of date.
	HasActive(ctx context.Context, areaID, residentID uuid.UUID) (bool, error)
	ListConfirmedOn(ctx context.Context, date time.Time) ([]*reservation.Reservation, error)
}

type TimelineRepository interface {
	Append(ctx context.Context, e timeline.Event) error
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]timeline.Event, error)
}

type InterestRepository interface {
	Create(ctx context.Context, e *waitlist.Entry) error
	FindByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error)
	// ListForSlot orders by created_at, then id.
	ListForSlot(ctx context.Context, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error)
	MarkNotified(ctx context.Context, e *waitlist.Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForResident(ctx context.Context, areaID, residentID uuid.UUID, date time.Time, slot schedule.Slot) error
	DeleteBefore(ctx context.Context, date time.Time) (int64, error)
}

type NotificationRepository interface {
	// Enqueue reports false when a job with the same non-empty dedup key exists.
	Enqueue(ctx context.Context, job notification.Job) (bool, error)
	// ClaimDue locks up to limit queued jobs whose run_at has passed, skipping rows locked elsewhere.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]notification.Job, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key, actorID uuid.UUID) (*IdempotencyRecord, error)
	// TryInsert also claims an expired key. It reports false when a live key already exists.
	TryInsert(ctx context.Context, rec IdempotencyRecord) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
