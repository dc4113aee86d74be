package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"legatum/internal/audit"
	id "legatum/pkg/domain"
	"legatum/pkg/platform/httputil"
)

// AuditHandler exposes the tamper-evident audit trail.
type AuditHandler struct {
	publisher *audit.Publisher
	logger    *slog.Logger
}

func NewAuditHandler(publisher *audit.Publisher, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{publisher: publisher, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit/{userID}", h.handleTrail)
	r.Get("/audit/{userID}/integrity", h.handleIntegrity)
}

type auditTrailResponse struct {
	UserID string        `json:"user_id"`
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
}

func (h *AuditHandler) handleTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := audit.Filter{
		EventType: r.URL.Query().Get("event_type"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, convErr := strconv.Atoi(raw); convErr == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	events, err := h.publisher.Trail(ctx, userID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, auditTrailResponse{
		UserID: userID.String(),
		Events: events,
		Count:  len(events),
	})
}

func (h *AuditHandler) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.publisher.VerifyUserLogs(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
