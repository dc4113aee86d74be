package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"legatum/internal/domain"
	"legatum/internal/interpret"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
	"legatum/pkg/platform/httputil"
	"legatum/pkg/requestcontext"
)

// PolicyReader loads the policies to interpret.
type PolicyReader interface {
	ListPoliciesByUser(ctx context.Context, userID id.UserID) ([]domain.ActionPolicy, error)
}

// PolicyInterpreter turns policies into structured action plans.
type PolicyInterpreter interface {
	InterpretPolicies(ctx context.Context, policies []domain.ActionPolicy, userID id.UserID) []interpret.Interpretation
}

// PoliciesHandler exposes policy interpretation.
type PoliciesHandler struct {
	policies    PolicyReader
	interpreter PolicyInterpreter
	logger      *slog.Logger
}

func NewPoliciesHandler(policies PolicyReader, interpreter PolicyInterpreter, logger *slog.Logger) *PoliciesHandler {
	return &PoliciesHandler{policies: policies, interpreter: interpreter, logger: logger}
}

func (h *PoliciesHandler) Register(r chi.Router) {
	r.Post("/policies/interpret", h.handleInterpret)
}

type interpretRequest struct {
	UserID string `json:"user_id"`
}

type interpretResponse struct {
	UserID          string                     `json:"user_id"`
	Interpretations []interpret.Interpretation `json:"interpretations"`
}

func (h *PoliciesHandler) handleInterpret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[interpretRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	policies, err := h.policies.ListPoliciesByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load policies",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if len(policies) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no policies found for user"))
		return
	}

	interpretations := h.interpreter.InterpretPolicies(ctx, policies, userID)
	httputil.WriteJSON(w, http.StatusOK, interpretResponse{
		UserID:          userID.String(),
		Interpretations: interpretations,
	})
}
