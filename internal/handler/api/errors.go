package api

import (
	"net/http"

	"condo-booking/internal/domain/quota"
	"condo-booking/internal/handler/httperr"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const codeInvalidRequest = "INVALID_REQUEST"

type errorMapping struct {
	status  int
	message string
}

var outcomeMappings = map[string]errorMapping{
	"SLOT_UNAVAILABLE":            {http.StatusBadRequest, "Slot unavailable"},
	"OUTSIDE_BOOKING_WINDOW":      {http.StatusBadRequest, "Date outside booking window"},
	"TERMS_NOT_ACCEPTED":          {http.StatusBadRequest, "Area terms must be accepted"},
	"QUOTA_EXCEEDED":              {http.StatusBadRequest, "Reservation quota exceeded"},
	"CAPACITY_EXCEEDED":           {http.StatusBadRequest, "Guest count exceeds area capacity"},
	"CANCELLATION_TOO_LATE":       {http.StatusBadRequest, "Cancellation window has closed"},
	"INVALID_REQUEST":             {http.StatusBadRequest, "Invalid request"},
	"INVALID_TRANSITION":          {http.StatusConflict, "Transition not allowed from current status"},
	"IDEMPOTENCY_KEY_REUSED":      {http.StatusConflict, "Idempotency key reused with a different request"},
	"INTEREST_ALREADY_REGISTERED": {http.StatusConflict, "Interest already registered for this slot"},
	"RESERVATION_NOT_FOUND":       {http.StatusNotFound, "Reservation not found"},
	"AREA_NOT_FOUND":              {http.StatusNotFound, "Area not found"},
	"INTEREST_NOT_FOUND":          {http.StatusNotFound, "Interest not found"},
	"FORBIDDEN":                   {http.StatusForbidden, "Forbidden"},
}

// respondError maps a use case error onto the error taxonomy.
func respondError(c *gin.Context, err error) {
	if errs.Is(err, queries.ErrInvalidCursor) {
		httperr.AbortWithError(c, http.StatusBadRequest, codeInvalidRequest, err, "Invalid cursor", nil)
		return
	}

	code := commands.Outcome(err)
	mapping, ok := outcomeMappings[code]
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, "INTERNAL", err, "Internal server error", nil)
		return
	}

	var detail any
	var exceeded *quota.ExceededError
	if errs.As(err, &exceeded) {
		detail = gin.H{
			"dimension": exceeded.Dimension,
			"scope":     exceeded.Scope,
			"limit":     exceeded.Limit,
			"current":   exceeded.Current,
		}
	}
	httperr.AbortWithError(c, mapping.status, code, err, mapping.message, detail)
}

func badRequest(c *gin.Context, err error, msg string) {
	httperr.AbortWithError(c, http.StatusBadRequest, codeInvalidRequest, err, msg, nil)
}

func unauthorized(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", nil, "Unauthorized", nil)
}
