package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"legatum/internal/audit"
	"legatum/internal/domain"
	"legatum/internal/platform/config"
	"legatum/internal/platform/metrics"
	"legatum/internal/resilience"
	"legatum/internal/store"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// OCRClient extracts text from certificate images.
type OCRClient interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// AuditPublisher records verification events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the death verification pipeline stage: OCR the certificate,
// parse and validate its fields, cross-check against the user profile, and
// mark the user deceased when everything lines up.
type Service struct {
	users      store.UserStore
	ocr        OCRClient
	resilience *resilience.Manager
	cfg        config.VerificationConfig

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
}

// Option configures optional Service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func New(users store.UserStore, ocr OCRClient, res *resilience.Manager, cfg config.VerificationConfig, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if ocr == nil {
		return nil, errors.New("ocr client is required")
	}
	if res == nil {
		return nil, errors.New("resilience manager is required")
	}
	s := &Service{
		users:      users,
		ocr:        ocr,
		resilience: res,
		cfg:        cfg,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AuthorizeSubmitter checks that the submitter is a verified trusted contact
// of the user. The account holder cannot verify their own death.
func (s *Service) AuthorizeSubmitter(ctx context.Context, userID id.UserID, submitterEmail string) error {
	contacts, err := s.users.ListTrustedContacts(ctx, userID)
	if err != nil {
		return err
	}
	for _, contact := range contacts {
		if contact.Email == submitterEmail && contact.CanSubmitVerification() {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "submitter is not a verified trusted contact")
}

// ProcessCertificate OCRs the image and parses the certificate fields. A
// vision outage degrades gracefully: the submission is flagged for manual
// review instead of failing.
func (s *Service) ProcessCertificate(ctx context.Context, image []byte, userID id.UserID) (*ProcessResult, error) {
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "certificate image is empty")
	}
	if s.metrics != nil {
		s.metrics.VerificationsStarted.Inc()
	}

	s.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventVerificationSubmitted,
		Description: "started processing death certificate",
		AIService:   audit.AIServiceVision,
		InputData:   map[string]any{"image_size_bytes": len(image)},
		Status:      audit.StatusPending,
	})

	text, err := s.extractText(ctx, image)
	if err != nil {
		var circuitErr *resilience.CircuitOpenError
		if errors.As(err, &circuitErr) {
			return &ProcessResult{
				Status:               StatusServiceUnavailable,
				ErrorMessage:         "Document analysis is temporarily unavailable. The submission was queued for manual review.",
				RequiresManualReview: true,
				RetryAfter:           circuitErr.RetryAfter,
			}, nil
		}
		var svcErr *resilience.ServiceError
		if errors.As(err, &svcErr) {
			return &ProcessResult{
				Status:               StatusServiceUnavailable,
				ErrorMessage:         "Document analysis is temporarily unavailable. The submission was queued for manual review.",
				RequiresManualReview: true,
			}, nil
		}
		return nil, err
	}
	if text == "" {
		return &ProcessResult{
			Status:               StatusServiceUnavailable,
			ErrorMessage:         "No text could be read from the certificate image.",
			RequiresManualReview: true,
		}, nil
	}

	data := ParseCertificate(text)
	validation := ValidateCertificate(data, s.cfg.MinConfidence)

	status := StatusSuccess
	if !validation.IsValid {
		status = StatusError
	}
	result := &ProcessResult{
		Status:           status,
		ExtractedData:    &data,
		ValidationResult: &validation,
		RawText:          text,
	}

	auditStatus := audit.StatusSuccess
	if !validation.IsValid {
		auditStatus = audit.StatusFailure
	}
	s.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventVerificationCompleted,
		Description: fmt.Sprintf("death certificate processing completed with status: %s", status),
		AIService:   audit.AIServiceVision,
		OutputData: map[string]any{
			"confidence_score": data.ConfidenceScore,
			"is_valid":         validation.IsValid,
		},
		Status: auditStatus,
	})

	return result, nil
}

func (s *Service) extractText(ctx context.Context, image []byte) (string, error) {
	var text string
	err := s.resilience.Call(ctx, "vision", resilience.CallOptions{}, func(ctx context.Context) error {
		var callErr error
		text, callErr = s.ocr.ExtractText(ctx, image)
		return callErr
	})
	return text, err
}

// VerifyDeathEvent cross-references extracted data with the user profile.
// On a verified match the user is marked deceased, which freezes their
// digital assets until policies execute.
func (s *Service) VerifyDeathEvent(ctx context.Context, data CertificateData, userID id.UserID) (*VerifyResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.UserStatusDeceased {
		return nil, dErrors.New(dErrors.CodeConflict, "user is already marked deceased")
	}

	nameMatch := FuzzyNameMatch(data.FullName, user.FullName, s.cfg.MatchThreshold)
	dateValidation := ValidateDeathDate(data.DateOfDeath)

	details := &Details{
		NameMatch:          nameMatch,
		DateValidation:     dateValidation,
		CertificateID:      data.CertificateID,
		VerificationPassed: nameMatch.IsMatch && dateValidation.IsValid,
	}

	if !details.VerificationPassed {
		if s.metrics != nil {
			s.metrics.VerificationsRejected.Inc()
		}
		s.emitAudit(ctx, userID, audit.Event{
			EventType:   audit.EventVerificationRejected,
			Description: "death verification failed - name or date mismatch",
			OutputData: map[string]any{
				"name_match":  nameMatch.IsMatch,
				"date_valid":  dateValidation.IsValid,
				"match_score": nameMatch.SimilarityScore,
			},
			Status: audit.StatusFailure,
		})
		return &VerifyResult{
			Status:       StatusVerificationFailed,
			ErrorMessage: "Death verification failed. Name or date does not match user profile.",
			Details:      details,
		}, nil
	}

	if err := s.users.UpdateUserStatus(ctx, userID, domain.UserStatusDeceased); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "death verified but status update failed")
	}
	if s.metrics != nil {
		s.metrics.VerificationsVerified.Inc()
	}

	s.logger.InfoContext(ctx, "death event verified",
		"user_id", userID,
		"match_score", nameMatch.SimilarityScore,
	)
	s.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventVerificationCompleted,
		Description: fmt.Sprintf("death event verified for user %s, status updated to deceased", user.FullName),
		OutputData:  map[string]any{"match_score": nameMatch.SimilarityScore},
		Status:      audit.StatusSuccess,
	})
	s.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventUserStatusUpdated,
		Description: "user status updated to deceased",
		Status:      audit.StatusSuccess,
	})
	s.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventAssetsFrozen,
		Description: "digital assets frozen pending policy execution",
		Status:      audit.StatusSuccess,
	})

	return &VerifyResult{
		Status:  StatusSuccess,
		Message: "Death event verified successfully. Digital assets have been frozen.",
		Details: details,
	}, nil
}

func (s *Service) emitAudit(ctx context.Context, userID id.UserID, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.UserID = userID
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
