package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tsix-platform/session-service/internal/services"
	"github.com/tsix-platform/session-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ParseStringIDParam extracts and trims a path parameter, writing a 400
// response when it is empty.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
	}
	return idStr
}

// handleServiceError maps service errors onto HTTP statuses.
func handleServiceError(c *gin.Context, logger utils.Logger, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case services.IsConflict(err):
		logger.Debug("Rejected conflicting session request",
			"path", c.FullPath(),
			"error", err.Error())
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case services.IsValidation(err):
		logger.Warn("Rejected invalid session request",
			"path", c.FullPath(),
			"error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		logger.LogError(err, "Session request failed upstream", "path", c.FullPath())
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: err.Error()})
	}
}
