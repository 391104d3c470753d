package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/utils"
)

const redisKeyPrefix = "session:recovery:"

// RedisStore keeps recovery snapshots in Redis, one key per session.
type RedisStore struct {
	client *redis.Client
	logger utils.Logger
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed recovery store. A zero ttl keeps
// snapshots until they are cleared after submission.
func NewRedisStore(client *redis.Client, logger utils.Logger, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, answers map[uint]models.AnswerRecord) error {
	payload, err := EncodeSnapshot(sessionID, answers)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (map[uint]models.AnswerRecord, error) {
	payload, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[uint]models.AnswerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	answers, err := DecodeSnapshot(payload)
	if err != nil {
		// Corrupt snapshot: recovery degrades to an empty mapping.
		s.logger.Warn("Discarding corrupt recovery snapshot",
			"session_id", sessionID,
			"error", err)
		return map[uint]models.AnswerRecord{}, nil
	}
	return answers, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
