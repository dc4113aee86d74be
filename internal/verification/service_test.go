package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"legatum/internal/domain"
	"legatum/internal/platform/config"
	"legatum/internal/resilience"
	"legatum/internal/store"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// =============================================================================
// Verification Service Test Suite
// =============================================================================
// Justification for unit tests: the OCR degradation paths and profile
// cross-referencing decisions need precise control over the OCR client's
// behavior, which E2E tests against a real vision endpoint cannot provide.

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type VerificationServiceSuite struct {
	suite.Suite
	users   *store.InMemoryUserStore
	ocr     *fakeOCR
	service *Service
	userID  id.UserID
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.users = store.NewInMemoryUserStore()
	s.ocr = &fakeOCR{}
	s.userID = id.UserID(uuid.New())

	s.Require().NoError(s.users.SaveUser(context.Background(), &domain.UserProfile{
		UserID:   s.userID,
		Email:    "john@example.com",
		FullName: "John Doe",
		Status:   domain.UserStatusActive,
	}))

	res := resilience.NewManager(config.ResilienceConfig{
		MaxRetries:       1,
		BaseDelay:        time.Millisecond,
		MaxDelay:         10 * time.Millisecond,
		FailureThreshold: 5,
		CooldownPeriod:   time.Minute,
	})

	var err error
	s.service, err = New(s.users, s.ocr, res, config.VerificationConfig{
		MatchThreshold: 0.8,
		MinConfidence:  0.5,
	})
	s.Require().NoError(err)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *VerificationServiceSuite) TestNew() {
	res := resilience.NewManager(config.ResilienceConfig{})

	s.Run("nil user store returns error", func() {
		_, err := New(nil, s.ocr, res, config.VerificationConfig{})
		s.Error(err)
	})

	s.Run("nil ocr client returns error", func() {
		_, err := New(s.users, nil, res, config.VerificationConfig{})
		s.Error(err)
	})

	s.Run("nil resilience manager returns error", func() {
		_, err := New(s.users, s.ocr, nil, config.VerificationConfig{})
		s.Error(err)
	})
}

// =============================================================================
// ProcessCertificate Tests
// =============================================================================

func (s *VerificationServiceSuite) TestProcessCertificate() {
	ctx := context.Background()
	image := []byte("fake-image-bytes")

	s.Run("empty image is invalid input", func() {
		_, err := s.service.ProcessCertificate(ctx, nil, s.userID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("well-formed certificate parses successfully", func() {
		s.ocr.text = "CERTIFICATE OF DEATH\nNAME: JOHN DOE\nDATE OF DEATH: 01/15/2024\nCERTIFICATE NO: DC-2024-001234"
		s.ocr.err = nil

		result, err := s.service.ProcessCertificate(ctx, image, s.userID)
		s.Require().NoError(err)
		s.Equal(StatusSuccess, result.Status)
		s.Require().NotNil(result.ExtractedData)
		s.Equal("John Doe", result.ExtractedData.FullName)
		s.True(result.ValidationResult.IsValid)
	})

	s.Run("unreadable certificate reports validation errors", func() {
		s.ocr.text = "some smudged text with no fields"
		s.ocr.err = nil

		result, err := s.service.ProcessCertificate(ctx, image, s.userID)
		s.Require().NoError(err)
		s.Equal(StatusError, result.Status)
		s.False(result.ValidationResult.IsValid)
		s.NotEmpty(result.ValidationResult.Errors)
	})

	s.Run("vision outage degrades to manual review", func() {
		s.ocr.text = ""
		s.ocr.err = resilience.NewHTTPServiceError("vision", 503, errors.New("upstream down"))

		result, err := s.service.ProcessCertificate(ctx, image, s.userID)
		s.Require().NoError(err)
		s.Equal(StatusServiceUnavailable, result.Status)
		s.True(result.RequiresManualReview)
		s.Nil(result.ExtractedData)
	})

	s.Run("empty OCR output degrades to manual review", func() {
		s.ocr.text = ""
		s.ocr.err = nil

		result, err := s.service.ProcessCertificate(ctx, image, s.userID)
		s.Require().NoError(err)
		s.Equal(StatusServiceUnavailable, result.Status)
		s.True(result.RequiresManualReview)
	})
}

// =============================================================================
// VerifyDeathEvent Tests
// =============================================================================

func (s *VerificationServiceSuite) TestVerifyDeathEvent() {
	ctx := context.Background()

	matching := CertificateData{
		FullName:        "John Doe",
		DateOfDeath:     "01/15/2024",
		CertificateID:   "DC-2024-001234",
		ConfidenceScore: 1.0,
	}

	s.Run("unknown user returns not found", func() {
		_, err := s.service.VerifyDeathEvent(ctx, matching, id.UserID(uuid.New()))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("matching certificate verifies and marks user deceased", func() {
		result, err := s.service.VerifyDeathEvent(ctx, matching, s.userID)
		s.Require().NoError(err)
		s.Equal(StatusSuccess, result.Status)
		s.True(result.Details.VerificationPassed)

		user, err := s.users.GetUser(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(domain.UserStatusDeceased, user.Status)
	})

	s.Run("already deceased user returns conflict", func() {
		_, err := s.service.VerifyDeathEvent(ctx, matching, s.userID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("name mismatch fails verification without status change", func() {
		otherID := id.UserID(uuid.New())
		s.Require().NoError(s.users.SaveUser(ctx, &domain.UserProfile{
			UserID:   otherID,
			FullName: "Completely Different",
			Status:   domain.UserStatusActive,
		}))

		result, err := s.service.VerifyDeathEvent(ctx, matching, otherID)
		s.Require().NoError(err)
		s.Equal(StatusVerificationFailed, result.Status)
		s.False(result.Details.VerificationPassed)

		user, err := s.users.GetUser(ctx, otherID)
		s.Require().NoError(err)
		s.Equal(domain.UserStatusActive, user.Status)
	})

	s.Run("future death date fails verification", func() {
		otherID := id.UserID(uuid.New())
		s.Require().NoError(s.users.SaveUser(ctx, &domain.UserProfile{
			UserID:   otherID,
			FullName: "John Doe",
			Status:   domain.UserStatusActive,
		}))

		future := matching
		future.DateOfDeath = "12/25/2099"
		result, err := s.service.VerifyDeathEvent(ctx, future, otherID)
		s.Require().NoError(err)
		s.Equal(StatusVerificationFailed, result.Status)
		s.False(result.Details.DateValidation.IsValid)
	})
}

// =============================================================================
// AuthorizeSubmitter Tests
// =============================================================================

func (s *VerificationServiceSuite) TestAuthorizeSubmitter() {
	ctx := context.Background()

	s.Run("verified trusted contact may submit", func() {
		s.Require().NoError(s.users.SaveTrustedContact(ctx, &domain.TrustedContact{
			ContactID:          uuid.NewString(),
			UserID:             s.userID,
			Email:              "sister@example.com",
			VerificationStatus: domain.VerificationVerified,
		}))

		s.NoError(s.service.AuthorizeSubmitter(ctx, s.userID, "sister@example.com"))
	})

	s.Run("pending contact is forbidden", func() {
		s.Require().NoError(s.users.SaveTrustedContact(ctx, &domain.TrustedContact{
			ContactID:          uuid.NewString(),
			UserID:             s.userID,
			Email:              "neighbor@example.com",
			VerificationStatus: domain.VerificationPending,
		}))

		err := s.service.AuthorizeSubmitter(ctx, s.userID, "neighbor@example.com")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("stranger is forbidden", func() {
		err := s.service.AuthorizeSubmitter(ctx, s.userID, "stranger@example.com")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
