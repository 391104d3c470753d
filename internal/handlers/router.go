package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/tsix-platform/session-service/internal/services"
	"github.com/tsix-platform/session-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
}

func NewHandlerManager(service services.SessionService, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(service, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "session-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.sessionHandler.StartSession)
			sessions.GET("/:id/state", hm.sessionHandler.GetState)
			sessions.POST("/:id/navigate", hm.sessionHandler.Navigate)
			sessions.POST("/:id/answer", hm.sessionHandler.SetAnswer)
			sessions.POST("/:id/submit", hm.sessionHandler.Submit)
			sessions.GET("/:id/report", hm.sessionHandler.Report)
			sessions.POST("/:id/reset", hm.sessionHandler.Reset)
		}
	}
}
