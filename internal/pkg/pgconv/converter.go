package pgconv

import (
	"database/sql"
	"errors"
	"time"

	"condo-booking/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrInvalidTimeValue = errors.New("invalid time value in pgtype.Time")

const microsPerMinute = int64(60 * 1_000_000)

func UUIDPtrFromPgtype(pu pgtype.UUID) *uuid.UUID {
	if !pu.Valid {
		return nil
	}
	id := uuid.UUID(pu.Bytes)
	return &id
}

func UUIDPtrToPgtype(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func StringPtrFromPgtype(pt pgtype.Text) *string {
	if !pt.Valid {
		return nil
	}
	return &pt.String
}

func StringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func TimePtrFromPgtype(pt pgtype.Timestamptz) *time.Time {
	if !pt.Valid {
		return nil
	}
	t := pt.Time
	return &t
}

func TimePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// DateToPgtype stores the calendar date only.
func DateToPgtype(t time.Time) pgtype.Date {
	return pgtype.Date{Time: schedule.Date(t), Valid: true}
}

func DateFromPgtype(pd pgtype.Date) time.Time {
	return schedule.Date(pd.Time)
}

func ClockTimeToPgtype(c schedule.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c.Minutes()) * microsPerMinute, Valid: true}
}

func ClockTimeFromPgtype(pt pgtype.Time) (schedule.ClockTime, error) {
	if !pt.Valid || pt.Microseconds%microsPerMinute != 0 {
		return 0, ErrInvalidTimeValue
	}
	minutes := int(pt.Microseconds / microsPerMinute)
	return schedule.NewClockTime(minutes/60, minutes%60)
}

func SlotFromPgtype(start, end pgtype.Time) (schedule.Slot, error) {
	s, err := ClockTimeFromPgtype(start)
	if err != nil {
		return schedule.Slot{}, err
	}
	e, err := ClockTimeFromPgtype(end)
	if err != nil {
		return schedule.Slot{}, err
	}
	return schedule.NewSlot(s, e)
}

// IsNoRows checks if the error is a "no rows" error from either sql or pgx
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
