package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tsix-platform/session-service/internal/services"
	"github.com/tsix-platform/session-service/internal/utils"
)

type SessionHandler struct {
	service services.SessionService
	logger  utils.Logger
}

func NewSessionHandler(service services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// StartSession begins a timed session from the bootstrap payload.
// POST /api/v1/sessions/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	state, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetState returns the current session snapshot.
// GET /api/v1/sessions/:id/state
func (h *SessionHandler) GetState(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	state, err := h.service.State(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type navigateRequest struct {
	Index int `json:"index"`
}

// Navigate repoints the current-question cursor.
// POST /api/v1/sessions/:id/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	state, err := h.service.Navigate(c.Request.Context(), sessionID, req.Index)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// SetAnswer records the candidate's current selection or edit.
// POST /api/v1/sessions/:id/answer
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if err := h.service.SetAnswer(c.Request.Context(), sessionID, &req); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

// Submit performs the one-shot submission (or a retry after a failed
// expiry submission).
// POST /api/v1/sessions/:id/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Report streams the xlsx report of the accepted submission.
// GET /api/v1/sessions/:id/report
func (h *SessionHandler) Report(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	report, err := h.service.Report(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="session-report-`+sessionID+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report)
}

// Reset tears the session down and clears its recovery snapshot.
// POST /api/v1/sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	if err := h.service.Reset(c.Request.Context(), sessionID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session reset"})
}
