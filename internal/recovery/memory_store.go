package recovery

import (
	"context"
	"sync"

	"github.com/tsix-platform/session-service/internal/models"
)

// MemoryStore is an in-process Store for tests and single-node development.
// It round-trips through the snapshot codec so the durable representation is
// exercised the same way the real backends exercise it.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, answers map[uint]models.AnswerRecord) error {
	payload, err := EncodeSnapshot(sessionID, answers)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = payload
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (map[uint]models.AnswerRecord, error) {
	s.mu.Lock()
	payload, ok := s.snapshots[sessionID]
	s.mu.Unlock()

	if !ok {
		return map[uint]models.AnswerRecord{}, nil
	}
	answers, err := DecodeSnapshot(payload)
	if err != nil {
		return map[uint]models.AnswerRecord{}, nil
	}
	return answers, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, sessionID)
	return nil
}

// Corrupt overwrites a stored snapshot with garbage. Test helper.
func (s *MemoryStore) Corrupt(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sessionID] = []byte("{not json")
}
