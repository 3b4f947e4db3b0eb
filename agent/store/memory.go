package store

import (
	"context"
	"sync"
	"time"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

var _ contractx.RecordStore = (*MemoryStore)(nil)

// MemoryStore keeps records in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu      sync.Mutex
	records []contractx.Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Append(_ context.Context, rec contractx.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, stamp(rec, s.now()))
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, timestamp, category string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Timestamp == timestamp && r.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) List(context.Context) ([]contractx.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contractx.Record(nil), s.records...), nil
}
