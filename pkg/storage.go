package pkg

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tsix-platform/session-service/internal/config"
	"github.com/tsix-platform/session-service/internal/recovery"
	"github.com/tsix-platform/session-service/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewRecoveryStore dials the backend named by cfg.RecoveryBackend and returns
// the recovery store bound to it.
func NewRecoveryStore(cfg *config.Config, log utils.Logger) (recovery.Store, error) {
	switch cfg.RecoveryBackend {
	case "postgres":
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return recovery.NewGormStore(db, log)
	case "redis", "":
		client, err := openRedis(cfg)
		if err != nil {
			return nil, err
		}
		return recovery.NewRedisStore(client, log, 0), nil
	default:
		return nil, fmt.Errorf("unknown recovery backend %q", cfg.RecoveryBackend)
	}
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.Environment == "production" {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
