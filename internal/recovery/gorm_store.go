package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tsix-platform/session-service/internal/models"
	"github.com/tsix-platform/session-service/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecoverySnapshot is the durable row holding one session's answer snapshot.
type RecoverySnapshot struct {
	SessionID string         `gorm:"primaryKey;size:64"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (RecoverySnapshot) TableName() string {
	return "recovery_snapshots"
}

// GormStore keeps recovery snapshots in Postgres, for deployments that run
// without Redis.
type GormStore struct {
	db     *gorm.DB
	logger utils.Logger
}

func NewGormStore(db *gorm.DB, logger utils.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&RecoverySnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate recovery snapshots: %w", err)
	}
	return &GormStore{db: db, logger: logger}, nil
}

func (s *GormStore) Save(ctx context.Context, sessionID string, answers map[uint]models.AnswerRecord) error {
	payload, err := EncodeSnapshot(sessionID, answers)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	row := RecoverySnapshot{
		SessionID: sessionID,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *GormStore) Load(ctx context.Context, sessionID string) (map[uint]models.AnswerRecord, error) {
	var row RecoverySnapshot
	err := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[uint]models.AnswerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	answers, err := DecodeSnapshot(row.Payload)
	if err != nil {
		s.logger.Warn("Discarding corrupt recovery snapshot",
			"session_id", sessionID,
			"error", err)
		return map[uint]models.AnswerRecord{}, nil
	}
	return answers, nil
}

func (s *GormStore) Clear(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Delete(&RecoverySnapshot{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
