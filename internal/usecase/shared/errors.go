package shared

import "condo-booking/internal/pkg/errs"

// Errors shared by commands and queries.
var (
	ErrForbidden           = errs.New("forbidden")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrAreaNotFound        = errs.New("area not found")
)
