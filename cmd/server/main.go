package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsix-platform/session-service/internal/config"
	"github.com/tsix-platform/session-service/internal/events"
	"github.com/tsix-platform/session-service/internal/gateway"
	"github.com/tsix-platform/session-service/internal/handlers"
	"github.com/tsix-platform/session-service/internal/services"
	"github.com/tsix-platform/session-service/internal/utils"
	"github.com/tsix-platform/session-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	store, err := pkg.NewRecoveryStore(cfg, logger)
	if err != nil {
		logger.LogError(err, "Failed to initialize recovery store")
		os.Exit(1)
	}

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		logger.LogError(err, "Failed to initialize event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	scoringClient := gateway.NewScoringClient(cfg.ScoringServiceURL, 30*time.Second)

	service := services.NewSessionService(
		store,
		scoringClient,
		publisher,
		utils.NewValidator(),
		logger,
		services.SessionServiceConfig{TimeWarningSeconds: cfg.TimeWarningSeconds},
	)
	defer service.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(service, logger).SetupRoutes(router)

	logger.Info("Starting session service",
		"port", cfg.Port,
		"recovery_backend", cfg.RecoveryBackend,
		"environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.LogError(err, "Server stopped")
		os.Exit(1)
	}
}

func buildPublisher(cfg *config.Config, logger utils.Logger) (events.EventPublisher, error) {
	slogger := utils.ToSlogLogger(logger)
	if len(cfg.KafkaBrokers) > 0 {
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       slogger,
		})
	}
	return events.NewGoChannelEventPublisher(cfg.KafkaTopic, slogger), nil
}
