package delivery

import (
	"context"
	"sort"
	"sync"

	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// InMemoryStore keeps delivery records in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.NotificationID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.NotificationID]Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.NotificationID] = record
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, notificationID id.NotificationID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[notificationID]
	if !ok {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "delivery record not found")
	}
	return record, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}
