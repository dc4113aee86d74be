package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// InMemoryStore keeps audit events in process memory. Used in tests and in
// deployments without Postgres.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.UserID][]Event
	byID   map[uuid.UUID]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events: make(map[id.UserID][]Event),
		byID:   make(map[uuid.UUID]Event),
	}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.UserID][]Event)
	s.byID = make(map[uuid.UUID]Event)
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	s.byID[event.LogID] = event
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, logID uuid.UUID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.byID[logID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit log not found")
	}
	return &event, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID, filter Filter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, event := range s.events[userID] {
		if !matchesFilter(event, filter) {
			continue
		}
		out = append(out, event)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// ListAll returns all audit events across all users. Used by the integrity
// sweep.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Event
	for _, userEvents := range s.events {
		all = append(all, userEvents...)
	}
	return all, nil
}

func matchesFilter(event Event, filter Filter) bool {
	if filter.EventType != "" && event.EventType != filter.EventType {
		return false
	}
	if !filter.From.IsZero() && event.Timestamp.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && event.Timestamp.After(filter.To) {
		return false
	}
	return true
}
