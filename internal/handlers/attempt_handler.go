package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quizer-service/internal/models"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	runService services.RunService
	validator  *validator.Validator
}

func NewAttemptHandler(
	runService services.RunService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		runService:  runService,
		validator:   validator,
	}
}

// StartAttempt begins an attempt at a running test. An unfinished previous
// attempt of the caller is closed with zero credit.
// @Router /attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.StartAttemptRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Starting attempt", "test_id", req.TestID, "lecturer_id", req.LecturerID)

	started, err := h.runService.StartAttempt(c.Request.Context(), user.UserID, user.Username, req.TestID, req.LecturerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, started)
}

// SubmitAttempt grades the caller's running attempt
// @Router /attempts/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitAttemptRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	h.LogRequest(c, "Submitting attempt", "answers", len(req.Answers))

	result, err := h.runService.SubmitAttempt(c.Request.Context(), user.UserID, user.Username, req.Answers, req.ElapsedMinutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTimeLeft reports the time left on the caller's running attempt
// @Router /attempts/time-left [get]
func (h *AttemptHandler) GetTimeLeft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	left, err := h.runService.RemainingTime(c.Request.Context(), user.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, left)
}
