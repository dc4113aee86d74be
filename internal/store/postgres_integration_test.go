//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"legatum/internal/domain"
	"legatum/internal/store"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
	"legatum/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	users    *store.PostgresUserStore
	policies *store.PostgresPolicyStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.users = store.NewPostgresUserStore(s.postgres.DB)
	s.policies = store.NewPostgresPolicyStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "action_policies", "trusted_contacts", "user_profiles")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newUser() *domain.UserProfile {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.UserProfile{
		UserID:        id.UserID(uuid.New()),
		Email:         uuid.NewString() + "@example.com",
		FullName:      "Jane Smith",
		DateOfBirth:   time.Date(1950, time.March, 14, 0, 0, 0, 0, time.UTC),
		KYCStatus:     domain.VerificationVerified,
		PhoneVerified: domain.VerificationPending,
		EmailVerified: domain.VerificationVerified,
		Status:        domain.UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *PostgresStoreSuite) TestUserRoundTrip() {
	ctx := context.Background()
	user := s.newUser()

	s.Require().NoError(s.users.SaveUser(ctx, user))

	got, err := s.users.GetUser(ctx, user.UserID)
	s.Require().NoError(err)
	s.Equal(user.Email, got.Email)
	s.Equal(user.FullName, got.FullName)
	s.Equal(domain.UserStatusActive, got.Status)
	s.True(user.DateOfBirth.Equal(got.DateOfBirth))
}

func (s *PostgresStoreSuite) TestGetUserNotFound() {
	ctx := context.Background()

	_, err := s.users.GetUser(ctx, id.UserID(uuid.New()))
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *PostgresStoreSuite) TestUpdateUserStatus() {
	ctx := context.Background()
	user := s.newUser()
	s.Require().NoError(s.users.SaveUser(ctx, user))

	s.Require().NoError(s.users.UpdateUserStatus(ctx, user.UserID, domain.UserStatusDeceased))

	got, err := s.users.GetUser(ctx, user.UserID)
	s.Require().NoError(err)
	s.Equal(domain.UserStatusDeceased, got.Status)
}

func (s *PostgresStoreSuite) TestTrustedContacts() {
	ctx := context.Background()
	user := s.newUser()
	s.Require().NoError(s.users.SaveUser(ctx, user))

	contact := &domain.TrustedContact{
		ContactID:          uuid.NewString(),
		UserID:             user.UserID,
		FullName:           "John Smith",
		Email:              "john@example.com",
		Relationship:       "son",
		VerificationStatus: domain.VerificationVerified,
		CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.users.SaveTrustedContact(ctx, contact))

	contacts, err := s.users.ListTrustedContacts(ctx, user.UserID)
	s.Require().NoError(err)
	s.Require().Len(contacts, 1)
	s.Equal("john@example.com", contacts[0].Email)
	s.True(contacts[0].CanSubmitVerification())
}

func (s *PostgresStoreSuite) TestPolicyRoundTripAndOrdering() {
	ctx := context.Background()
	user := s.newUser()
	s.Require().NoError(s.users.SaveUser(ctx, user))

	low := &domain.ActionPolicy{
		PolicyID:              id.PolicyID(uuid.New()),
		UserID:                user.UserID,
		AssetType:             "email",
		PlatformName:          "google",
		AccountIdentifier:     "jane@gmail.com",
		ActionType:            domain.ActionDelete,
		Priority:              1,
		NaturalLanguagePolicy: "Delete my gmail account after I die",
		Conditions:            []string{"after_verification"},
		CreatedAt:             time.Now().UTC().Truncate(time.Microsecond),
	}
	high := &domain.ActionPolicy{
		PolicyID:          id.PolicyID(uuid.New()),
		UserID:            user.UserID,
		AssetType:         "financial",
		PlatformName:      "chase_bank",
		AccountIdentifier: "checking-1234",
		ActionType:        domain.ActionLock,
		Priority:          10,
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.policies.SavePolicy(ctx, low))
	s.Require().NoError(s.policies.SavePolicy(ctx, high))

	got, err := s.policies.GetPolicy(ctx, low.PolicyID)
	s.Require().NoError(err)
	s.Equal("google", got.PlatformName)
	s.Equal([]string{"after_verification"}, got.Conditions)

	listed, err := s.policies.ListPoliciesByUser(ctx, user.UserID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal("chase_bank", listed[0].PlatformName)
	s.Equal("google", listed[1].PlatformName)
}

func (s *PostgresStoreSuite) TestGetPolicyNotFound() {
	ctx := context.Background()

	_, err := s.policies.GetPolicy(ctx, id.PolicyID(uuid.New()))
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}
