package httptransport

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"legatum/internal/verification"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
	"legatum/pkg/platform/httputil"
	"legatum/pkg/requestcontext"
)

// VerificationService is the surface of the death verification pipeline the
// HTTP layer uses.
type VerificationService interface {
	AuthorizeSubmitter(ctx context.Context, userID id.UserID, submitterEmail string) error
	ProcessCertificate(ctx context.Context, image []byte, userID id.UserID) (*verification.ProcessResult, error)
	VerifyDeathEvent(ctx context.Context, data verification.CertificateData, userID id.UserID) (*verification.VerifyResult, error)
}

// VerificationHandler handles death verification submissions.
type VerificationHandler struct {
	service VerificationService
	logger  *slog.Logger
}

func NewVerificationHandler(service VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, logger: logger}
}

func (h *VerificationHandler) Register(r chi.Router) {
	r.Post("/verification/death", h.handleSubmitDeathVerification)
}

// deathVerificationRequest is a trusted contact's submission: the target
// user, the submitter's own email, and a scanned certificate.
type deathVerificationRequest struct {
	UserID           string `json:"user_id"`
	SubmitterEmail   string `json:"submitter_email"`
	CertificateImage string `json:"certificate_image"`
}

// deathVerificationResponse pairs the OCR processing result with the
// cross-reference outcome. Verification is nil when processing never
// produced usable data.
type deathVerificationResponse struct {
	Processing   *verification.ProcessResult `json:"processing"`
	Verification *verification.VerifyResult  `json:"verification,omitempty"`
}

func (h *VerificationHandler) handleSubmitDeathVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[deathVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.CertificateImage)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "certificate_image must be base64 encoded"))
		return
	}

	if err := h.service.AuthorizeSubmitter(ctx, userID, req.SubmitterEmail); err != nil {
		h.logger.WarnContext(ctx, "verification submitter rejected",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	processing, err := h.service.ProcessCertificate(ctx, image, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate processing failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := deathVerificationResponse{Processing: processing}
	if processing.Status == verification.StatusSuccess && processing.ExtractedData != nil {
		result, err := h.service.VerifyDeathEvent(ctx, *processing.ExtractedData, userID)
		if err != nil {
			h.logger.ErrorContext(ctx, "death event verification failed",
				"request_id", requestID,
				"user_id", userID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		resp.Verification = result
	}

	status := http.StatusOK
	if processing.Status == verification.StatusServiceUnavailable {
		status = http.StatusServiceUnavailable
		if processing.RetryAfter > 0 {
			w.Header().Set("Retry-After", formatRetryAfter(processing.RetryAfter))
		}
	}
	httputil.WriteJSON(w, status, resp)
}
