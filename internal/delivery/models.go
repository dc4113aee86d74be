package delivery

import (
	"time"

	"legatum/internal/notification"
	id "legatum/pkg/domain"
)

// Status is the lifecycle state of one notification delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusRetry     Status = "retry"
	StatusExpired   Status = "expired"
)

// Succeeded reports whether the status counts as a successful delivery.
func (s Status) Succeeded() bool {
	return s == StatusSent || s == StatusDelivered
}

// Delivery methods the dispatcher can drive. Phone and mail contact methods
// have no channel and stay with a human operator.
const (
	MethodEmail   = "email"
	MethodAPI     = "api"
	MethodWebhook = "webhook"
	MethodForm    = "form"
)

// Target carries per-delivery routing the notification itself does not know:
// an explicit recipient mailbox or a webhook endpoint.
type Target struct {
	RecipientEmail string `json:"recipient_email,omitempty"`
	WebhookURL     string `json:"webhook_url,omitempty"`
}

// Record tracks one notification through delivery and retries. The original
// notification and target are kept so retries resend the real message.
type Record struct {
	NotificationID id.NotificationID `json:"notification_id"`
	UserID         id.UserID         `json:"user_id"`
	Platform       string            `json:"platform"`
	Method         string            `json:"delivery_method"`
	Status         Status            `json:"status"`
	Attempts       int               `json:"attempts"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at,omitzero"`
	LastAttempt    time.Time         `json:"last_attempt,omitzero"`
	NextRetry      time.Time         `json:"next_retry,omitzero"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Details        map[string]any    `json:"delivery_details,omitempty"`

	Notification notification.Notification `json:"notification"`
	Target       Target                    `json:"target"`
}

// RetryDue reports whether the record is waiting for a retry whose time has
// come.
func (r Record) RetryDue(now time.Time) bool {
	return r.Status == StatusRetry && !r.NextRetry.IsZero() && !r.NextRetry.After(now)
}

// Result is the outcome of one delivery attempt.
type Result struct {
	NotificationID id.NotificationID `json:"notification_id"`
	Status         Status            `json:"status"`
	Details        map[string]any    `json:"delivery_details,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	RetryScheduled bool              `json:"retry_scheduled,omitempty"`
	NextRetry      time.Time         `json:"next_retry,omitzero"`
}

// BatchResult aggregates a batch delivery run.
type BatchResult struct {
	BatchID     string    `json:"batch_id"`
	Total       int       `json:"total_notifications"`
	Successful  int       `json:"successful_deliveries"`
	Failed      int       `json:"failed_deliveries"`
	Results     []Result  `json:"delivery_results"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RetryResult aggregates one pass over the retry queue.
type RetryResult struct {
	Processed  int      `json:"processed_retries"`
	Successful int      `json:"successful_retries"`
	Failed     int      `json:"failed_retries"`
	Expired    int      `json:"expired_retries,omitempty"`
	Results    []Result `json:"results"`
}

// Statistics summarizes delivery state across all tracked notifications.
type Statistics struct {
	Total       int            `json:"total_notifications"`
	ByStatus    map[string]int `json:"status_counts"`
	ByPlatform  map[string]int `json:"platform_counts"`
	ByMethod    map[string]int `json:"method_counts"`
	SuccessRate float64        `json:"success_rate"`
}
