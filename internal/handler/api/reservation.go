package api

import (
	"errors"
	"io"
	"net/http"

	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/user"
	reqdto "condo-booking/internal/handler/dto/request"
	resdto "condo-booking/internal/handler/dto/response"
	"condo-booking/internal/handler/middleware"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	admission commands.AdmissionCommands
	status    commands.ReservationStatusCommands
	q         queries.ReservationQueries
}

func NewReservationHandler(
	admission commands.AdmissionCommands,
	status commands.ReservationStatusCommands,
	q queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{admission: admission, status: status, q: q}
}

// @Summary Request reservation
// @Description Admit a reservation through the ordered rule pipeline. Replays with the same Idempotency-Key return the original result.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Param request body reqdto.AdmitReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Success 200 {object} resdto.ReservationResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) Admit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		badRequest(c, err, "Invalid Idempotency-Key")
		return
	}

	var req reqdto.AdmitReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request")
		return
	}
	in, err := req.ToInput(actor)
	if err != nil {
		badRequest(c, err, "Invalid date or slot")
		return
	}

	result, err := h.admission.Admit(c.Request.Context(), in, key)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := resdto.FromReservationView(result.Reservation)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.IsReplayed {
		c.Header(middleware.HeaderIdempotentReplayed, "true")
		c.JSON(http.StatusOK, res)
		return
	}
	c.Header("Location", "/api/reservations/"+res.ID.String())
	c.JSON(http.StatusCreated, res)
}

// @Summary Cancel reservation
// @Description Cancel a pending or confirmed reservation. Residents must respect the cancellation window.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelReservationRequest false "Cancellation note"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.CancelReservationRequest
	// The body is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err, "Invalid request")
		return
	}

	view, err := h.status.Cancel(c.Request.Context(), id, actor, req.GetNote())
	h.respondView(c, view, err)
}

// @Summary Confirm reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	view, err := h.status.Confirm(c.Request.Context(), id, actor)
	h.respondView(c, view, err)
}

// @Summary Mark reservation used
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/use [post]
func (h *ReservationHandler) MarkUsed(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	view, err := h.status.MarkUsed(c.Request.Context(), id, actor)
	h.respondView(c, view, err)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	h.respondView(c, view, err)
}

// @Summary Get reservation by protocol
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param protocol path string true "Reservation protocol"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/protocol/{protocol} [get]
func (h *ReservationHandler) GetByProtocol(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}
	protocol, err := reservation.ParseProtocol(c.Param("protocol"))
	if err != nil {
		badRequest(c, err, "Invalid protocol")
		return
	}
	view, err := h.q.GetByProtocol(c.Request.Context(), actor, protocol)
	h.respondView(c, view, err)
}

// @Summary List my reservations
// @Description Newest first, keyset paginated.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param after query string false "Cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/reservations [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return
	}

	var query reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "Invalid query")
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		badRequest(c, err, "Invalid date")
		return
	}

	views, next, err := h.q.ListMine(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := resdto.FromReservationList(views, next)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Reservation timeline
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {array} resdto.TimelineEventResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id}/timeline [get]
func (h *ReservationHandler) Timeline(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	events, err := h.q.Timeline(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := resdto.FromTimeline(events)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) respondView(c *gin.Context, view *queries.ReservationView, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := resdto.FromReservationView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func idempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(middleware.HeaderIdempotencyKey)
	if raw == "" {
		return nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// actorAndID aborts the request when either is missing.
func actorAndID(c *gin.Context) (user.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		unauthorized(c)
		return user.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err, "Invalid id")
		return user.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}
