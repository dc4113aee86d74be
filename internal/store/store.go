// Package store holds the persistence interfaces and implementations shared
// by the pipeline features. Memory stores back tests and single-node
// deployments; Postgres stores back production.
package store

import (
	"context"

	"legatum/internal/domain"
	id "legatum/pkg/domain"
)

// UserStore persists user profiles and their trusted contacts.
type UserStore interface {
	GetUser(ctx context.Context, userID id.UserID) (*domain.UserProfile, error)
	SaveUser(ctx context.Context, profile *domain.UserProfile) error
	UpdateUserStatus(ctx context.Context, userID id.UserID, status domain.UserStatus) error
	ListTrustedContacts(ctx context.Context, userID id.UserID) ([]domain.TrustedContact, error)
	SaveTrustedContact(ctx context.Context, contact *domain.TrustedContact) error
}

// PolicyStore persists action policies.
type PolicyStore interface {
	GetPolicy(ctx context.Context, policyID id.PolicyID) (*domain.ActionPolicy, error)
	ListPoliciesByUser(ctx context.Context, userID id.UserID) ([]domain.ActionPolicy, error)
	SavePolicy(ctx context.Context, policy *domain.ActionPolicy) error
}
