package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"slices"
	"strings"
	"time"

	"legatum/internal/audit"
	"legatum/internal/clients/llm"
	"legatum/internal/interpret"
	"legatum/internal/platform/metrics"
	"legatum/internal/resilience"
	id "legatum/pkg/domain"
)

// Model parameters for notification drafting. Slightly warmer than
// interpretation so the prose reads naturally.
const (
	notificationTemperature = 0.2
	maxTokens               = 1000
)

const notificationSystemPrompt = "You are a professional legal assistant generating formal death notifications for financial and digital platforms. Always respond with valid JSON."

// defaultFollowUpTimeline is assumed when neither the platform registry nor
// the model supplies one.
const defaultFollowUpTimeline = "2-3 weeks"

// LLMClient produces chat completions.
type LLMClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// AuditPublisher records generation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Generator turns interpreted policies into ready-to-deliver notifications.
// Templates are preferred; the language model drafts platform/action pairs
// no template covers, and a static fallback keeps the pipeline moving when
// the model is down.
type Generator struct {
	library    *Library
	llm        LLMClient
	resilience *resilience.Manager

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	now     func() time.Time
}

// GeneratorOption configures optional Generator collaborators.
type GeneratorOption func(*Generator)

func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

func WithAuditPublisher(auditor AuditPublisher) GeneratorOption {
	return func(g *Generator) { g.auditor = auditor }
}

func withClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(library *Library, client LLMClient, res *resilience.Manager, opts ...GeneratorOption) (*Generator, error) {
	if library == nil {
		return nil, errors.New("template library is required")
	}
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	if res == nil {
		return nil, errors.New("resilience manager is required")
	}
	g := &Generator{
		library:    library,
		llm:        client,
		resilience: res,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// actionable reports whether the pipeline may execute an action without a
// human in the loop. Transfers move assets between parties and always need
// manual handling.
func actionable(action string) bool {
	switch strings.ToLower(action) {
	case "delete", "memorialize", "lock":
		return true
	default:
		return false
	}
}

// Batch generates notifications for a set of interpreted policies. Policies
// flagged for manual review and non-actionable action types are skipped, not
// failed; a single policy's failure never aborts the batch.
func (g *Generator) Batch(ctx context.Context, interpretations []interpret.Interpretation, info DeceasedInfo, userID id.UserID) BatchResult {
	result := BatchResult{
		BatchID:       g.batchID(userID),
		TotalPolicies: len(interpretations),
		GeneratedAt:   g.now().UTC(),
	}

	g.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventBatchStarted,
		Description: fmt.Sprintf("starting batch notification generation for %d policies", len(interpretations)),
		AIService:   audit.AIServiceLLM,
		InputData: map[string]any{
			"batch_id":     result.BatchID,
			"policy_count": len(interpretations),
		},
		Status: audit.StatusPending,
	})

	for _, interpretation := range interpretations {
		if interpretation.RequiresManualReview {
			result.Errors = append(result.Errors, BatchError{
				PolicyID: interpretation.PolicyID,
				Error:    "Policy requires manual review",
				Action:   "skipped",
			})
			g.emitAudit(ctx, userID, audit.Event{
				EventType:   audit.EventManualReviewFlagged,
				Description: fmt.Sprintf("skipped notification for %s pending manual review", interpretation.PlatformName),
				InputData:   map[string]any{"policy_id": interpretation.PolicyID.String()},
			})
			continue
		}
		if !actionable(interpretation.ActionType) {
			result.Errors = append(result.Errors, BatchError{
				PolicyID: interpretation.PolicyID,
				Error:    fmt.Sprintf("action type %q requires manual handling", interpretation.ActionType),
				Action:   "skipped",
			})
			continue
		}

		notification, err := g.Generate(ctx, interpretation, info, userID)
		if err != nil {
			g.logger.ErrorContext(ctx, "notification generation failed",
				"policy_id", interpretation.PolicyID,
				"platform", interpretation.PlatformName,
				"error", err,
			)
			result.Failed++
			result.Errors = append(result.Errors, BatchError{
				PolicyID: interpretation.PolicyID,
				Error:    err.Error(),
				Action:   "failed",
			})
			continue
		}
		result.Notifications = append(result.Notifications, notification)
		result.Successful++
	}

	status := audit.StatusSuccess
	if result.Failed > 0 {
		status = audit.StatusFailure
	}
	g.emitAudit(ctx, userID, audit.Event{
		EventType: audit.EventBatchCompleted,
		Description: fmt.Sprintf("batch notification generation complete: %d successful, %d failed",
			result.Successful, result.Failed),
		AIService: audit.AIServiceLLM,
		InputData: map[string]any{"batch_id": result.BatchID},
		OutputData: map[string]any{
			"successful_notifications": result.Successful,
			"failed_notifications":     result.Failed,
			"skipped":                  len(result.Errors) - result.Failed,
		},
		Status: status,
	})
	return result
}

// Generate produces one notification, template-first. When no template
// matches the platform/action pair the language model drafts it, and a model
// outage degrades to the static fallback rather than an error.
func (g *Generator) Generate(ctx context.Context, interpretation interpret.Interpretation, info DeceasedInfo, userID id.UserID) (Notification, error) {
	if interpretation.RequiresManualReview {
		return Notification{}, errors.New("policy requires manual review")
	}
	if !actionable(interpretation.ActionType) {
		return Notification{}, fmt.Errorf("action type %q requires manual handling", interpretation.ActionType)
	}

	reqs := RequirementsFor(interpretation.PlatformName)

	if notification, ok := g.fromTemplate(interpretation, info, reqs); ok {
		g.countGenerated("template")
		g.emitAudit(ctx, userID, audit.Event{
			EventType:   audit.EventNotificationGenerated,
			Description: fmt.Sprintf("generated %s notification for %s from template", interpretation.ActionType, interpretation.PlatformName),
			InputData:   map[string]any{"policy_id": interpretation.PolicyID.String()},
			OutputData:  map[string]any{"template_used": true, "delivery_method": notification.DeliveryMethod},
		})
		return notification, nil
	}

	return g.fromModel(ctx, interpretation, info, reqs, userID)
}

// fromTemplate renders the notification from the library. The template's
// delivery method is tried first; the platform's preferred contact methods
// cover templates typed differently from the registry.
func (g *Generator) fromTemplate(interpretation interpret.Interpretation, info DeceasedInfo, reqs PlatformRequirements) (Notification, bool) {
	var types []string
	for _, method := range reqs.ContactMethods {
		if validDeliveryMethods[method] {
			types = append(types, method)
		}
	}
	if !slices.Contains(types, TemplateEmail) {
		types = append(types, TemplateEmail)
	}

	var tmpl Template
	found := false
	for _, templateType := range types {
		if t, ok := g.library.Get(interpretation.PlatformName, interpretation.ActionType, templateType); ok {
			tmpl, found = t, true
			break
		}
	}
	if !found {
		return Notification{}, false
	}

	personalized := g.library.Personalize(tmpl, info,
		interpretation.PlatformName, interpretation.ActionType, interpretation.AccountIdentifier)

	requiredDocs := personalized.RequiredDocs
	if len(requiredDocs) == 0 {
		requiredDocs = reqs.RequiredDocs
	}
	formURL := personalized.FormURL
	if formURL == "" {
		formURL = reqs.Contact.FormURL
	}
	deliveryMethod := personalized.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = TemplateEmail
	}

	notification := Notification{
		Subject:            personalized.Subject,
		Body:               personalized.Body,
		RequiredDocuments:  requiredDocs,
		ContactInformation: reqs.Contact.Line(),
		DeliveryMethod:     deliveryMethod,
		UrgencyLevel:       UrgencyNormal,
		FollowUpTimeline:   defaultFollowUpTimeline,
		FormURL:            formURL,
		ProcessingTime:     reqs.ProcessingTime,
		TemplateUsed:       true,
	}
	g.stamp(&notification, interpretation)
	return notification, true
}

// fromModel drafts the notification with the language model. JSON the model
// returns that fails to parse, and model outages, both degrade to the static
// fallback with the error recorded on the notification.
func (g *Generator) fromModel(ctx context.Context, interpretation interpret.Interpretation, info DeceasedInfo, reqs PlatformRequirements, userID id.UserID) (Notification, error) {
	g.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventAIServiceCall,
		Description: fmt.Sprintf("generating %s notification for %s", interpretation.ActionType, interpretation.PlatformName),
		AIService:   audit.AIServiceLLM,
		InputData: map[string]any{
			"policy_id":     interpretation.PolicyID.String(),
			"platform_name": interpretation.PlatformName,
			"action_type":   interpretation.ActionType,
		},
		Status: audit.StatusPending,
	})

	content, err := g.complete(ctx, interpretation, info, reqs)
	if err != nil {
		g.logger.ErrorContext(ctx, "model notification generation failed, using fallback",
			"policy_id", interpretation.PolicyID,
			"platform", interpretation.PlatformName,
			"error", err,
		)
		notification := g.fallback(interpretation, info, reqs)
		notification.GenerationError = err.Error()
		notification.RequiresManualIntervention = true
		g.countGenerated("fallback")
		g.emitAudit(ctx, userID, audit.Event{
			EventType:   audit.EventNotificationGenerated,
			Description: fmt.Sprintf("notification for %s fell back after model error", interpretation.PlatformName),
			AIService:   audit.AIServiceLLM,
			InputData:   map[string]any{"policy_id": interpretation.PolicyID.String()},
			Status:      audit.StatusFailure,
		})
		return notification, nil
	}

	var notification Notification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &notification); err != nil {
		g.logger.ErrorContext(ctx, "notification response was not valid JSON",
			"policy_id", interpretation.PolicyID,
			"error", err,
		)
		notification = g.fallback(interpretation, info, reqs)
		notification.GenerationError = fmt.Sprintf("JSON parsing failed: %v", err)
		g.countGenerated("fallback")
	} else {
		g.fillDefaults(&notification, reqs)
		g.countGenerated("ai")
	}

	g.stamp(&notification, interpretation)
	g.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventNotificationGenerated,
		Description: fmt.Sprintf("generated %s notification for %s", interpretation.ActionType, interpretation.PlatformName),
		AIService:   audit.AIServiceLLM,
		InputData:   map[string]any{"policy_id": interpretation.PolicyID.String()},
		OutputData: map[string]any{
			"template_used":   false,
			"delivery_method": notification.DeliveryMethod,
			"fallback":        notification.Fallback,
		},
	})
	return notification, nil
}

func (g *Generator) complete(ctx context.Context, interpretation interpret.Interpretation, info DeceasedInfo, reqs PlatformRequirements) (string, error) {
	var content string
	err := g.resilience.Call(ctx, llm.ServiceName, resilience.CallOptions{}, func(ctx context.Context) error {
		var callErr error
		content, callErr = g.llm.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: "system", Content: notificationSystemPrompt},
				{Role: "user", Content: buildNotificationPrompt(interpretation, info, reqs)},
			},
			Temperature: notificationTemperature,
			MaxTokens:   maxTokens,
		})
		return callErr
	})
	return content, err
}

// fillDefaults backfills fields the model left empty from the platform
// registry.
func (g *Generator) fillDefaults(n *Notification, reqs PlatformRequirements) {
	if len(n.RequiredDocuments) == 0 {
		n.RequiredDocuments = reqs.RequiredDocs
	}
	if n.ContactInformation == "" {
		n.ContactInformation = reqs.Contact.Line()
	}
	if n.DeliveryMethod == "" {
		n.DeliveryMethod = TemplateEmail
	}
	if n.UrgencyLevel == "" {
		n.UrgencyLevel = UrgencyNormal
	}
	if n.FollowUpTimeline == "" {
		n.FollowUpTimeline = defaultFollowUpTimeline
	}
	if n.FormURL == "" {
		n.FormURL = reqs.Contact.FormURL
	}
	if n.ProcessingTime == "" {
		n.ProcessingTime = reqs.ProcessingTime
	}
}

func (g *Generator) stamp(n *Notification, interpretation interpret.Interpretation) {
	n.NotificationID = id.NewNotificationID()
	n.PolicyID = interpretation.PolicyID
	n.Platform = normalizePlatform(interpretation.PlatformName)
	n.ActionType = strings.ToLower(interpretation.ActionType)
	n.AccountIdentifier = interpretation.AccountIdentifier
	n.GeneratedAt = g.now().UTC()
	n.Status = StatusReady
}

// batchID builds a readable, collision-resistant batch identifier.
func (g *Generator) batchID(userID id.UserID) string {
	h := fnv.New32a()
	h.Write([]byte(userID.String()))
	return fmt.Sprintf("batch_%s_%04d", g.now().UTC().Format("20060102_150405"), h.Sum32()%10000)
}

func (g *Generator) countGenerated(source string) {
	if g.metrics != nil {
		g.metrics.NotificationsGenerated.WithLabelValues(source).Inc()
	}
}

func (g *Generator) emitAudit(ctx context.Context, userID id.UserID, event audit.Event) {
	if g.auditor == nil {
		return
	}
	event.UserID = userID
	if err := g.auditor.Emit(ctx, event); err != nil {
		g.logger.ErrorContext(ctx, "audit emit failed",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
