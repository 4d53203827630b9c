package api

import (
	"net/http"

	reqdto "condo-booking/internal/handler/dto/request"
	resdto "condo-booking/internal/handler/dto/response"
	"condo-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type InterestHandler struct {
	cmds commands.WaitlistCommands
}

func NewInterestHandler(cmds commands.WaitlistCommands) *InterestHandler {
	return &InterestHandler{cmds: cmds}
}

// @Summary Register interest
// @Description Join the waitlist for a slot. A freed slot notifies every waiting resident; it never books.
// @Tags interests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Area ID"
// @Param request body reqdto.RegisterInterestRequest true "Slot of interest"
// @Success 201 {object} resdto.InterestResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/areas/{id}/interests [post]
func (h *InterestHandler) Register(c *gin.Context) {
	actor, areaID, ok := actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.RegisterInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request")
		return
	}
	in, err := req.ToInput(actor, areaID)
	if err != nil {
		badRequest(c, err, "Invalid date or slot")
		return
	}

	view, err := h.cmds.RegisterInterest(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := resdto.FromInterestView(view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary Withdraw interest
// @Tags interests
// @Security BearerAuth
// @Param id path string true "Interest ID"
// @Success 204
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/interests/{id} [delete]
func (h *InterestHandler) Withdraw(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.cmds.WithdrawInterest(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
