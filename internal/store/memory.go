package store

import (
	"context"
	"sort"
	"sync"

	"legatum/internal/domain"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// InMemoryUserStore keeps user profiles in process memory.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	users    map[id.UserID]domain.UserProfile
	contacts map[id.UserID][]domain.TrustedContact
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[id.UserID]domain.UserProfile),
		contacts: make(map[id.UserID][]domain.TrustedContact),
	}
}

func (s *InMemoryUserStore) GetUser(_ context.Context, userID id.UserID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "user profile not found")
	}
	return &user, nil
}

func (s *InMemoryUserStore) SaveUser(_ context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.UserID] = *profile
	return nil
}

func (s *InMemoryUserStore) UpdateUserStatus(_ context.Context, userID id.UserID, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user profile not found")
	}
	user.Status = status
	s.users[userID] = user
	return nil
}

func (s *InMemoryUserStore) ListTrustedContacts(_ context.Context, userID id.UserID) ([]domain.TrustedContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TrustedContact{}, s.contacts[userID]...), nil
}

func (s *InMemoryUserStore) SaveTrustedContact(_ context.Context, contact *domain.TrustedContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.UserID] = append(s.contacts[contact.UserID], *contact)
	return nil
}

// InMemoryPolicyStore keeps action policies in process memory.
type InMemoryPolicyStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]domain.ActionPolicy
}

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{policies: make(map[id.PolicyID]domain.ActionPolicy)}
}

func (s *InMemoryPolicyStore) GetPolicy(_ context.Context, policyID id.PolicyID) (*domain.ActionPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[policyID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	return &policy, nil
}

func (s *InMemoryPolicyStore) ListPoliciesByUser(_ context.Context, userID id.UserID) ([]domain.ActionPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ActionPolicy
	for _, policy := range s.policies {
		if policy.UserID == userID {
			out = append(out, policy)
		}
	}
	// Highest priority first so executors act on critical assets before
	// best-effort ones.
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (s *InMemoryPolicyStore) SavePolicy(_ context.Context, policy *domain.ActionPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.PolicyID] = *policy
	return nil
}
