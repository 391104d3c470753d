package recovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tsix-platform/session-service/internal/models"
)

// SnapshotSchemaVersion guards against loading snapshots written by an
// incompatible build. A mismatch is treated as a corrupt snapshot.
const SnapshotSchemaVersion = 1

// Store mirrors a session's answer mapping to durable media so a reload can
// resume an in-progress session. Save overwrites the whole snapshot, Load
// degrades to an empty mapping on corruption, Clear is idempotent.
// Snapshots are keyed by session identity so a finished candidate's answers
// never leak into the next session on the same device.
type Store interface {
	Save(ctx context.Context, sessionID string, answers map[uint]models.AnswerRecord) error
	Load(ctx context.Context, sessionID string) (map[uint]models.AnswerRecord, error)
	Clear(ctx context.Context, sessionID string) error
}

// AnswerPair serializes as a [questionId, record] tuple, the shape the
// snapshot list is specified in.
type AnswerPair struct {
	QuestionID uint
	Record     models.AnswerRecord
}

func (p AnswerPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.QuestionID, p.Record})
}

func (p *AnswerPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("answer pair: expected 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.QuestionID); err != nil {
		return fmt.Errorf("answer pair question id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Record); err != nil {
		return fmt.Errorf("answer pair record: %w", err)
	}
	return nil
}

// Snapshot is the durable representation of one session's answer mapping.
type Snapshot struct {
	Version   int          `json:"version"`
	SessionID string       `json:"session_id"`
	SavedAt   time.Time    `json:"saved_at"`
	Answers   []AnswerPair `json:"answers"`
}

// EncodeSnapshot serializes the full mapping. Pairs are ordered by question
// identity so successive snapshots of the same mapping are byte-identical.
func EncodeSnapshot(sessionID string, answers map[uint]models.AnswerRecord) ([]byte, error) {
	pairs := make([]AnswerPair, 0, len(answers))
	for id, rec := range answers {
		pairs = append(pairs, AnswerPair{QuestionID: id, Record: rec})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].QuestionID < pairs[j].QuestionID })

	return json.Marshal(Snapshot{
		Version:   SnapshotSchemaVersion,
		SessionID: sessionID,
		SavedAt:   time.Now().UTC(),
		Answers:   pairs,
	})
}

// DecodeSnapshot parses a durable snapshot back into the answer mapping.
// Callers treat any returned error as a corrupt snapshot and degrade to an
// empty mapping.
func DecodeSnapshot(data []byte) (map[uint]models.AnswerRecord, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	answers := make(map[uint]models.AnswerRecord, len(snap.Answers))
	for _, pair := range snap.Answers {
		answers[pair.QuestionID] = pair.Record
	}
	return answers, nil
}
