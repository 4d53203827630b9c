package commands

import (
	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/waitlist"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"
)

// Outcome labels a command result for metrics and logs.
func Outcome(err error) string {
	var exceeded *quota.ExceededError
	switch {
	case err == nil:
		return "OK"
	case errs.As(err, &exceeded):
		return "QUOTA_EXCEEDED"
	case errs.Is(err, reservation.ErrSlotUnavailable):
		return "SLOT_UNAVAILABLE"
	case errs.Is(err, area.ErrOutsideBookingWindow):
		return "OUTSIDE_BOOKING_WINDOW"
	case errs.Is(err, area.ErrTermsNotAccepted):
		return "TERMS_NOT_ACCEPTED"
	case errs.Is(err, area.ErrCapacityExceeded):
		return "CAPACITY_EXCEEDED"
	case errs.Is(err, area.ErrCancellationTooLate):
		return "CANCELLATION_TOO_LATE"
	case errs.Is(err, reservation.ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errs.Is(err, ErrIdempotencyKeyReused):
		return "IDEMPOTENCY_KEY_REUSED"
	case errs.Is(err, waitlist.ErrAlreadyRegistered):
		return "INTEREST_ALREADY_REGISTERED"
	case errs.Is(err, shared.ErrReservationNotFound):
		return "RESERVATION_NOT_FOUND"
	case errs.Is(err, shared.ErrAreaNotFound):
		return "AREA_NOT_FOUND"
	case errs.Is(err, waitlist.ErrEntryNotFound):
		return "INTEREST_NOT_FOUND"
	case errs.Is(err, shared.ErrForbidden):
		return "FORBIDDEN"
	case errs.Is(err, ErrInvalidRequest):
		return "INVALID_REQUEST"
	default:
		return "INTERNAL"
	}
}
