package notification

import (
	"time"

	id "legatum/pkg/domain"
)

// Notification status values. A notification is "ready" once generated;
// the delivery dispatcher owns the lifecycle from there.
const StatusReady = "ready"

// Urgency levels the generator may assign.
const (
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// DeceasedInfo carries the personalization context for a notification: the
// deceased account holder plus the trusted contact signing the message.
// Empty contact fields render as bracketed placeholders so a reviewer can
// spot what still needs filling in.
type DeceasedInfo struct {
	FullName    string `json:"full_name"`
	DateOfDeath string `json:"date_of_death"`

	ContactName    string `json:"contact_name,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	ContactAddress string `json:"contact_address,omitempty"`
	Relationship   string `json:"relationship,omitempty"`
}

// Notification is a ready-to-deliver platform message. The JSON tags double
// as the response contract when the language model drafts the message.
type Notification struct {
	Subject            string   `json:"subject"`
	Body               string   `json:"body"`
	RequiredDocuments  []string `json:"required_documents"`
	ContactInformation string   `json:"contact_information"`
	DeliveryMethod     string   `json:"delivery_method"`
	UrgencyLevel       string   `json:"urgency_level"`
	FollowUpTimeline   string   `json:"follow_up_timeline"`
	AdditionalNotes    string   `json:"additional_notes,omitempty"`

	// Metadata stamped after generation; not part of the model contract.
	NotificationID    id.NotificationID `json:"notification_id"`
	PolicyID          id.PolicyID       `json:"policy_id"`
	Platform          string            `json:"platform"`
	ActionType        string            `json:"action_type"`
	AccountIdentifier string            `json:"account_identifier,omitempty"`
	FormURL           string            `json:"form_url,omitempty"`
	ProcessingTime    string            `json:"processing_time,omitempty"`
	GeneratedAt       time.Time         `json:"generated_at"`
	Status            string            `json:"status"`

	TemplateUsed               bool   `json:"template_used,omitempty"`
	Fallback                   bool   `json:"fallback_notification,omitempty"`
	GenerationError            string `json:"generation_error,omitempty"`
	RequiresManualIntervention bool   `json:"requires_manual_intervention,omitempty"`
}

// BatchError records one policy the batch could not produce a notification
// for. Action is "skipped" for manual-review gates and "failed" for
// generation errors.
type BatchError struct {
	PolicyID id.PolicyID `json:"policy_id"`
	Error    string      `json:"error"`
	Action   string      `json:"action"`
}

// BatchResult aggregates a batch generation run. Skipped policies count as
// neither successful nor failed.
type BatchResult struct {
	BatchID       string         `json:"batch_id"`
	TotalPolicies int            `json:"total_policies"`
	Successful    int            `json:"successful_notifications"`
	Failed        int            `json:"failed_notifications"`
	Notifications []Notification `json:"notifications"`
	Errors        []BatchError   `json:"errors"`
	GeneratedAt   time.Time      `json:"generated_at"`
}
