package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "legatum/pkg/domain"
)

// Status records the outcome of the audited operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPending Status = "pending"
)

// Event types emitted by the pipeline.
const (
	EventVerificationSubmitted = "verification_submitted"
	EventVerificationCompleted = "verification_completed"
	EventVerificationRejected  = "verification_rejected"
	EventPolicyInterpreted     = "policy_interpreted"
	EventNotificationGenerated = "notification_generated"
	EventNotificationDelivered = "notification_delivered"
	EventDeliveryFailed        = "delivery_failed"
	EventDeliveryRetried       = "delivery_retried"
	EventCircuitOpened         = "circuit_opened"
	EventCircuitReset          = "circuit_reset"
	EventUserStatusUpdated     = "user_status_updated"
	EventAssetsFrozen          = "digital_assets_frozen"
	EventManualReviewFlagged   = "manual_review_flagged"
	EventAIServiceCall         = "ai_service_call"
	EventBatchStarted          = "notification_batch_start"
	EventBatchCompleted        = "notification_batch_complete"
	EventTemplateCreated       = "custom_template_created"
	EventTemplatesImported     = "templates_imported"
)

// AI service names recorded on events that involved an outbound AI call.
const (
	AIServiceVision = "vision"
	AIServiceLLM    = "llm"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. The hash signature
// makes stored entries tamper-evident.
type Event struct {
	LogID       uuid.UUID      `json:"log_id"`
	UserID      id.UserID      `json:"user_id"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description,omitempty"`
	AIService   string         `json:"ai_service,omitempty"`
	InputData   map[string]any `json:"input_data,omitempty"`
	OutputData  map[string]any `json:"output_data,omitempty"`
	Status      Status         `json:"status"`
	RequestID   string         `json:"request_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Hash        string         `json:"hash"`
}

// ComputeHash returns the SHA-256 signature over the event's stable fields.
// json.Marshal sorts map keys, so the digest is deterministic for equal
// content.
func (e *Event) ComputeHash() string {
	payload := map[string]any{
		"log_id":      e.LogID.String(),
		"user_id":     e.UserID.String(),
		"event_type":  e.EventType,
		"description": e.Description,
		"ai_service":  e.AIService,
		"input_data":  e.InputData,
		"output_data": e.OutputData,
		"status":      string(e.Status),
		"timestamp":   e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity reports whether the stored hash still matches the content.
func (e *Event) VerifyIntegrity() bool {
	return e.Hash != "" && e.Hash == e.ComputeHash()
}

// IntegrityReport summarizes a bulk integrity sweep.
type IntegrityReport struct {
	TotalLogs   int         `json:"total_logs"`
	ValidLogs   int         `json:"valid_logs"`
	InvalidLogs []uuid.UUID `json:"invalid_logs"`
}

// Filter narrows audit trail queries.
type Filter struct {
	EventType string
	From      time.Time
	To        time.Time
	Limit     int
}
