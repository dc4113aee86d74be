package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"legatum/internal/delivery"
	"legatum/internal/interpret"
	"legatum/internal/notification"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
	"legatum/pkg/platform/httputil"
	"legatum/pkg/requestcontext"
)

// NotificationsHandler exposes notification generation, template management
// and delivery tracking.
type NotificationsHandler struct {
	generator  *notification.Generator
	library    *notification.Library
	dispatcher *delivery.Dispatcher
	logger     *slog.Logger
}

func NewNotificationsHandler(generator *notification.Generator, library *notification.Library, dispatcher *delivery.Dispatcher, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{generator: generator, library: library, dispatcher: dispatcher, logger: logger}
}

func (h *NotificationsHandler) Register(r chi.Router) {
	r.Post("/notifications/generate", h.handleGenerate)
	r.Post("/notifications/deliver", h.handleDeliver)
	r.Post("/notifications/deliver/batch", h.handleDeliverBatch)
	r.Get("/notifications/{notificationID}/status", h.handleStatus)
	r.Post("/notifications/retries/process", h.handleProcessRetries)
	r.Get("/delivery/statistics", h.handleStatistics)

	r.Post("/templates", h.handleCreateTemplate)
	r.Get("/templates", h.handleListTemplates)
	r.Get("/templates/export", h.handleExportTemplates)
	r.Post("/templates/import", h.handleImportTemplates)
	r.Get("/templates/statistics", h.handleTemplateStatistics)
}

// ==========================================================================
// Generation
// ==========================================================================

type generateRequest struct {
	UserID          string                     `json:"user_id"`
	DeceasedInfo    notification.DeceasedInfo  `json:"deceased_info"`
	Interpretations []interpret.Interpretation `json:"interpretations"`
}

func (h *NotificationsHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[generateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.DeceasedInfo.FullName == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "deceased_info.full_name is required"))
		return
	}
	if len(req.Interpretations) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "at least one interpretation is required"))
		return
	}

	result := h.generator.Batch(ctx, req.Interpretations, req.DeceasedInfo, userID)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// ==========================================================================
// Delivery
// ==========================================================================

type deliverRequest struct {
	UserID       string                    `json:"user_id"`
	Notification notification.Notification `json:"notification"`
	Target       delivery.Target           `json:"target"`
	Method       string                    `json:"method,omitempty"`
}

func (h *NotificationsHandler) handleDeliver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[deliverRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Notification.Subject == "" || req.Notification.Body == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "notification subject and body are required"))
		return
	}

	result, err := h.dispatcher.Deliver(ctx, req.Notification, req.Target, req.Method, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "delivery failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type deliverBatchRequest struct {
	UserID        string                      `json:"user_id"`
	Notifications []notification.Notification `json:"notifications"`
	Target        delivery.Target             `json:"target"`
}

func (h *NotificationsHandler) handleDeliverBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[deliverBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(req.Notifications) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "at least one notification is required"))
		return
	}

	result := h.dispatcher.BatchDeliver(ctx, req.Notifications, req.Target, userID)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *NotificationsHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.dispatcher.Status(ctx, notificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

type processRetriesRequest struct {
	UserID string `json:"user_id"`
}

func (h *NotificationsHandler) handleProcessRetries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[processRetriesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.dispatcher.ProcessRetryQueue(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *NotificationsHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dispatcher.Statistics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// ==========================================================================
// Templates
// ==========================================================================

type createTemplateRequest struct {
	UserID   string                `json:"user_id"`
	Platform string                `json:"platform"`
	Action   string                `json:"action"`
	Type     string                `json:"type"`
	Template notification.Template `json:"template"`
}

func (h *NotificationsHandler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createTemplateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Platform == "" || req.Action == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "platform and action are required"))
		return
	}

	if err := h.library.CreateCustom(ctx, req.Platform, req.Action, req.Type, req.Template, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"platform": req.Platform,
		"action":   req.Action,
		"status":   "created",
	})
}

func (h *NotificationsHandler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	httputil.WriteJSON(w, http.StatusOK, h.library.List(platform))
}

func (h *NotificationsHandler) handleExportTemplates(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	httputil.WriteJSON(w, http.StatusOK, h.library.Export(platform))
}

type importTemplatesRequest struct {
	UserID    string                      `json:"user_id"`
	Overwrite bool                        `json:"overwrite"`
	Export    notification.TemplateExport `json:"export"`
}

func (h *NotificationsHandler) handleImportTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[importTemplatesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.library.Import(ctx, req.Export, userID, req.Overwrite)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *NotificationsHandler) handleTemplateStatistics(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.library.Statistics())
}
