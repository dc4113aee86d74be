package interpret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legatum/internal/audit"
	"legatum/internal/clients/llm"
	"legatum/internal/domain"
	"legatum/internal/resilience"
	id "legatum/pkg/domain"
)

// Model parameters for interpretation calls. Temperature stays low so the
// same policy interprets the same way across runs.
const (
	interpretationTemperature = 0.1
	maxTokens                 = 1000
)

// reviewConfidenceThreshold forces manual review below this confidence even
// when the model did not request it.
const reviewConfidenceThreshold = 0.7

// LLMClient produces chat completions.
type LLMClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// AuditPublisher records interpretation events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Interpreter turns natural language policies into structured action plans.
// Model failures never fail the batch: each policy falls back to a
// conservative manual-review plan.
type Interpreter struct {
	llm        LLMClient
	resilience *resilience.Manager

	logger  *slog.Logger
	auditor AuditPublisher
	now     func() time.Time
}

// Option configures optional Interpreter collaborators.
type Option func(*Interpreter)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(i *Interpreter) { i.auditor = auditor }
}

func withClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

func New(client LLMClient, res *resilience.Manager, opts ...Option) (*Interpreter, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	if res == nil {
		return nil, errors.New("resilience manager is required")
	}
	i := &Interpreter{
		llm:        client,
		resilience: res,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// InterpretPolicies produces one interpretation per policy, in input order.
func (i *Interpreter) InterpretPolicies(ctx context.Context, policies []domain.ActionPolicy, userID id.UserID) []Interpretation {
	out := make([]Interpretation, 0, len(policies))
	for _, policy := range policies {
		out = append(out, i.interpretOne(ctx, policy, userID))
	}
	return out
}

func (i *Interpreter) interpretOne(ctx context.Context, policy domain.ActionPolicy, userID id.UserID) Interpretation {
	i.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventAIServiceCall,
		Description: fmt.Sprintf("interpreting policy for %s", policy.PlatformName),
		AIService:   audit.AIServiceLLM,
		InputData: map[string]any{
			"policy_id":     policy.PolicyID.String(),
			"platform_name": policy.PlatformName,
			"action_type":   string(policy.ActionType),
		},
		Status: audit.StatusPending,
	})

	content, err := i.complete(ctx, policy)
	if err != nil {
		i.logger.ErrorContext(ctx, "policy interpretation failed, using fallback",
			"policy_id", policy.PolicyID,
			"platform", policy.PlatformName,
			"error", err,
		)
		interpretation := newFallbackInterpretation(policy)
		interpretation.InterpretationError = err.Error()
		i.finalize(&interpretation, policy)
		i.emitAudit(ctx, userID, audit.Event{
			EventType:   audit.EventPolicyInterpreted,
			Description: fmt.Sprintf("interpretation for %s fell back after model error", policy.PlatformName),
			AIService:   audit.AIServiceLLM,
			InputData:   map[string]any{"policy_id": policy.PolicyID.String()},
			Status:      audit.StatusFailure,
		})
		return interpretation
	}

	var interpretation Interpretation
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &interpretation); err != nil {
		i.logger.ErrorContext(ctx, "interpretation response was not valid JSON",
			"policy_id", policy.PolicyID,
			"error", err,
		)
		interpretation = newFallbackInterpretation(policy)
		interpretation.InterpretationError = fmt.Sprintf("JSON parsing failed: %v", err)
	}

	i.finalize(&interpretation, policy)
	i.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventPolicyInterpreted,
		Description: fmt.Sprintf("interpreted policy for %s", policy.PlatformName),
		AIService:   audit.AIServiceLLM,
		InputData:   map[string]any{"policy_id": policy.PolicyID.String()},
		OutputData: map[string]any{
			"confidence":             interpretation.Confidence,
			"requires_manual_review": interpretation.RequiresManualReview,
			"validation_passed":      interpretation.ValidationPassed,
		},
	})
	return interpretation
}

func (i *Interpreter) complete(ctx context.Context, policy domain.ActionPolicy) (string, error) {
	var content string
	err := i.resilience.Call(ctx, llm.ServiceName, resilience.CallOptions{}, func(ctx context.Context) error {
		var callErr error
		content, callErr = i.llm.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: buildPrompt(policy)},
			},
			Temperature: interpretationTemperature,
			MaxTokens:   maxTokens,
		})
		return callErr
	})
	return content, err
}

// finalize stamps metadata and validates the interpretation against the
// source policy. Mismatched action or platform fails validation; low
// confidence forces manual review without failing it.
func (i *Interpreter) finalize(interpretation *Interpretation, policy domain.ActionPolicy) {
	interpretation.PolicyID = policy.PolicyID
	interpretation.InterpretedAt = i.now().UTC()
	interpretation.ValidationPassed = true

	if !strings.EqualFold(interpretation.ActionType, string(policy.ActionType)) {
		interpretation.ValidationPassed = false
		interpretation.ValidationIssues = append(interpretation.ValidationIssues,
			fmt.Sprintf("Action type mismatch: expected %q, got %q", policy.ActionType, interpretation.ActionType))
	}
	if !strings.EqualFold(interpretation.PlatformName, policy.PlatformName) {
		interpretation.ValidationPassed = false
		interpretation.ValidationIssues = append(interpretation.ValidationIssues,
			fmt.Sprintf("Platform name mismatch: expected %q, got %q", policy.PlatformName, interpretation.PlatformName))
	}
	if interpretation.Confidence < reviewConfidenceThreshold {
		interpretation.RequiresManualReview = true
		interpretation.ValidationIssues = append(interpretation.ValidationIssues,
			fmt.Sprintf("Low confidence score: %.2f - manual review recommended", interpretation.Confidence))
	}
	if len(interpretation.StructuredActions) == 0 {
		interpretation.ValidationPassed = false
		interpretation.ValidationIssues = append(interpretation.ValidationIssues, "Missing required field: structured_actions")
	}
	if len(interpretation.RequiredDocumentation) == 0 {
		interpretation.ValidationPassed = false
		interpretation.ValidationIssues = append(interpretation.ValidationIssues, "Missing required field: required_documentation")
	}
	if interpretation.EstimatedTimeline == "" {
		interpretation.ValidationPassed = false
		interpretation.ValidationIssues = append(interpretation.ValidationIssues, "Missing required field: estimated_timeline")
	}
}

func (i *Interpreter) emitAudit(ctx context.Context, userID id.UserID, event audit.Event) {
	if i.auditor == nil {
		return
	}
	event.UserID = userID
	if err := i.auditor.Emit(ctx, event); err != nil {
		i.logger.ErrorContext(ctx, "audit emit failed",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
