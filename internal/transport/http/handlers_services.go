package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"legatum/internal/resilience"
	dErrors "legatum/pkg/domain-errors"
	"legatum/pkg/platform/httputil"
	"legatum/pkg/requestcontext"
)

// ServicesHandler exposes external service health and circuit administration.
type ServicesHandler struct {
	resilience *resilience.Manager
	logger     *slog.Logger
}

func NewServicesHandler(manager *resilience.Manager, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{resilience: manager, logger: logger}
}

// RegisterHealth mounts the unauthenticated health endpoint.
func (h *ServicesHandler) RegisterHealth(r chi.Router) {
	r.Get("/services/health", h.handleHealth)
}

func (h *ServicesHandler) Register(r chi.Router) {
	r.Post("/services/{service}/reset", h.handleResetCircuit)
}

type healthResponse struct {
	Status   string                              `json:"status"`
	Services map[string]resilience.ServiceHealth `json:"services"`
}

func (h *ServicesHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.resilience.HealthSnapshot()

	status := "healthy"
	for _, svc := range snapshot {
		if svc.Status != resilience.StatusAvailable {
			status = "degraded"
			break
		}
	}

	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   status,
		Services: snapshot,
	})
}

func (h *ServicesHandler) handleResetCircuit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	service := chi.URLParam(r, "service")
	if service == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "service name is required"))
		return
	}

	h.resilience.ResetCircuit(ctx, service)
	h.logger.InfoContext(ctx, "circuit reset requested",
		"request_id", requestID,
		"service", service,
	)

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"service": service,
		"status":  "reset",
	})
}
