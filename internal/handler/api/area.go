package api

import (
	"net/http"

	reqdto "condo-booking/internal/handler/dto/request"
	resdto "condo-booking/internal/handler/dto/response"
	"condo-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AreaHandler struct {
	availability queries.AvailabilityQueries
}

func NewAreaHandler(availability queries.AvailabilityQueries) *AreaHandler {
	return &AreaHandler{availability: availability}
}

// @Summary Area availability
// @Description Resolved slots for a date with their active reservation counts.
// @Tags areas
// @Produce json
// @Security BearerAuth
// @Param id path string true "Area ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/areas/{id}/availability [get]
func (h *AreaHandler) Availability(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err, "Invalid id")
		return
	}
	var query reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "Invalid query")
		return
	}
	date, err := query.ParseDate()
	if err != nil {
		badRequest(c, err, "Invalid date")
		return
	}

	view, err := h.availability.ForDate(c.Request.Context(), areaID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := resdto.FromAvailabilityView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
