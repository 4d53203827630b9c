package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrInvalidTemplate = errors.New("invalid notification template")
	ErrInvalidJobKind  = errors.New("invalid job kind")
)

type TemplateKind string

const (
	TemplateReservationCreated   TemplateKind = "reserva_criada"
	TemplateReservationConfirmed TemplateKind = "reserva_confirmada"
	TemplateReservationCancelled TemplateKind = "reserva_cancelada"
	TemplateReminder             TemplateKind = "lembrete"
	TemplateSlotAvailable        TemplateKind = "cancelamento_disponivel"
)

func (k TemplateKind) IsValid() bool {
	switch k {
	case TemplateReservationCreated, TemplateReservationConfirmed, TemplateReservationCancelled,
		TemplateReminder, TemplateSlotAvailable:
		return true
	default:
		return false
	}
}

// Notifier delivers a templated message. Delivery outcome is logged, never surfaced to users.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind TemplateKind, data map[string]any) error
}

type JobKind string

const (
	JobNotify    JobKind = "notify"
	JobSlotFreed JobKind = "slot_freed"
)

type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobDone   JobStatus = "done"
	JobFailed JobStatus = "failed"
)

// Job is an outbox row written in the same transaction as the change that caused it.
type Job struct {
	ID        uuid.UUID
	Kind      JobKind
	Topic     string
	Payload   []byte
	DedupKey  string
	Status    JobStatus
	Attempts  int
	RunAt     time.Time
	LastError *string
}

type NotifyPayload struct {
	UserID   uuid.UUID      `json:"user_id"`
	Template TemplateKind   `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

type SlotFreedPayload struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	AreaID        uuid.UUID `json:"area_id"`
	Date          string    `json:"date"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
}

func (p SlotFreedPayload) Parse() (time.Time, schedule.Slot, error) {
	date, err := schedule.ParseDate(p.Date)
	if err != nil {
		return time.Time{}, schedule.Slot{}, err
	}
	slot, err := schedule.ParseSlot(p.Start, p.End)
	if err != nil {
		return time.Time{}, schedule.Slot{}, err
	}
	return date, slot, nil
}

// NewNotifyJob builds a delivery job. dedupKey may be empty when repeats are acceptable.
func NewNotifyJob(userID uuid.UUID, kind TemplateKind, data map[string]any, dedupKey string, runAt time.Time) (Job, error) {
	if !kind.IsValid() {
		return Job{}, ErrInvalidTemplate
	}
	payload, err := json.Marshal(NotifyPayload{UserID: userID, Template: kind, Data: data})
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:       uuid.New(),
		Kind:     JobNotify,
		Topic:    string(kind),
		Payload:  payload,
		DedupKey: dedupKey,
		Status:   JobQueued,
		RunAt:    runAt,
	}, nil
}

// NewSlotFreedJob is keyed by reservation so one cancellation frees its slot once.
func NewSlotFreedJob(reservationID, areaID uuid.UUID, date time.Time, slot schedule.Slot, runAt time.Time) (Job, error) {
	payload, err := json.Marshal(SlotFreedPayload{
		ReservationID: reservationID,
		AreaID:        areaID,
		Date:          schedule.FormatDate(date),
		Start:         slot.Start.String(),
		End:           slot.End.String(),
	})
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:       uuid.New(),
		Kind:     JobSlotFreed,
		Topic:    areaID.String(),
		Payload:  payload,
		DedupKey: "slot_freed:" + reservationID.String(),
		Status:   JobQueued,
		RunAt:    runAt,
	}, nil
}

// Backoff doubles from one minute and caps at one hour.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := time.Minute
	for i := 1; i < attempts && d < time.Hour; i++ {
		d *= 2
	}
	return min(d, time.Hour)
}
