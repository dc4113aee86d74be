package delivery

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"time"

	"legatum/internal/notification"
	"legatum/internal/platform/config"
)

const userAgent = "Legatum/1.0"

// Channel sends one notification over a specific transport. Send returns
// transport-specific details for the delivery record.
type Channel interface {
	Method() string
	Send(ctx context.Context, record Record) (map[string]any, error)
}

// =============================================================================
// Email
// =============================================================================

// smtpSender matches smtp.SendMail so tests can intercept the wire call.
type smtpSender func(addr string, from string, to []string, msg []byte) error

// EmailChannel delivers notifications over SMTP.
type EmailChannel struct {
	cfg  config.DeliveryConfig
	send smtpSender
}

func NewEmailChannel(cfg config.DeliveryConfig) *EmailChannel {
	c := &EmailChannel{cfg: cfg}
	c.send = c.sendMail
	return c
}

func (c *EmailChannel) Method() string { return MethodEmail }

func (c *EmailChannel) Send(_ context.Context, record Record) (map[string]any, error) {
	if c.cfg.SMTPAddr == "" {
		return nil, fmt.Errorf("smtp not configured")
	}

	to := record.Target.RecipientEmail
	if to == "" {
		to = notification.RequirementsFor(record.Platform).Contact.Email
	}
	if to == "" {
		return nil, fmt.Errorf("no recipient email for platform %s", record.Platform)
	}

	msg := buildMessage(c.cfg.SMTPFrom, to, record.Notification.Subject, record.Notification.Body)
	if err := c.send(c.cfg.SMTPAddr, c.cfg.SMTPFrom, []string{to}, msg); err != nil {
		return nil, fmt.Errorf("smtp send: %w", err)
	}

	return map[string]any{
		"to_email": to,
		"subject":  record.Notification.Subject,
		"sent_at":  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (c *EmailChannel) sendMail(addr, from string, to []string, msg []byte) error {
	var auth smtp.Auth
	if c.cfg.SMTPUsername != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", c.cfg.SMTPUsername, c.cfg.SMTPPassword, host)
	}
	return smtp.SendMail(addr, auth, from, to, msg)
}

func buildMessage(from, to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}

// =============================================================================
// Platform API
// =============================================================================

// platformEndpoint describes one platform's notification API.
type platformEndpoint struct {
	URL          string
	AuthRequired bool
}

// platformAPIs registers the platforms that accept programmatic
// notifications.
var platformAPIs = map[string]platformEndpoint{
	"google":    {URL: "https://www.googleapis.com/gmail/v1/users/me/messages/send", AuthRequired: true},
	"facebook":  {URL: "https://graph.facebook.com/v18.0/me/messages", AuthRequired: true},
	"microsoft": {URL: "https://graph.microsoft.com/v1.0/me/sendMail", AuthRequired: true},
}

// APIChannel delivers notifications through platform REST APIs. Tokens come
// from the environment per platform (GOOGLE_API_TOKEN and so on) since each
// platform issues its own credentials.
type APIChannel struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoints  map[string]platformEndpoint
	token      func(platform string) string
}

func NewAPIChannel(logger *slog.Logger) *APIChannel {
	return &APIChannel{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		endpoints:  platformAPIs,
		token: func(platform string) string {
			return os.Getenv(strings.ToUpper(platform) + "_API_TOKEN")
		},
	}
}

func (c *APIChannel) Method() string { return MethodAPI }

func (c *APIChannel) Send(ctx context.Context, record Record) (map[string]any, error) {
	endpoint, ok := c.endpoints[record.Platform]
	if !ok {
		return nil, fmt.Errorf("no API configuration for platform %s", record.Platform)
	}

	payload, err := json.Marshal(map[string]any{
		"subject":            record.Notification.Subject,
		"body":               record.Notification.Body,
		"platform":           record.Platform,
		"action_type":        record.Notification.ActionType,
		"account_identifier": record.Notification.AccountIdentifier,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal API payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if endpoint.AuthRequired {
		if token := c.token(record.Platform); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			c.logger.Warn("no API token configured", "platform", record.Platform)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed: %s returned %d", endpoint.URL, resp.StatusCode)
	}

	return map[string]any{
		"endpoint":        endpoint.URL,
		"response_status": resp.StatusCode,
		"sent_at":         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// =============================================================================
// Webhook
// =============================================================================

// WebhookChannel posts notifications to a caller-supplied endpoint, signing
// the payload with HMAC-SHA256 when a secret is configured. The signature is
// computed over the JSON encoding with sorted keys, so receivers can verify
// it independent of field order.
type WebhookChannel struct {
	httpClient *http.Client
	secret     string
}

func NewWebhookChannel(secret string) *WebhookChannel {
	return &WebhookChannel{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		secret:     secret,
	}
}

func (c *WebhookChannel) Method() string { return MethodWebhook }

func (c *WebhookChannel) Send(ctx context.Context, record Record) (map[string]any, error) {
	webhookURL := record.Target.WebhookURL
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook URL not specified")
	}

	// map encoding sorts keys, giving a deterministic signing payload.
	payload, err := json.Marshal(map[string]any{
		"event_type":  "death_notification",
		"platform":    record.Platform,
		"action_type": record.Notification.ActionType,
		"notification_data": map[string]any{
			"subject":            record.Notification.Subject,
			"body":               record.Notification.Body,
			"account_identifier": record.Notification.AccountIdentifier,
			"required_documents": record.Notification.RequiredDocuments,
		},
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"notification_id": record.NotificationID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.secret != "" {
		req.Header.Set("X-Webhook-Signature", "sha256="+signPayload(c.secret, payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook delivery failed: %s returned %d", webhookURL, resp.StatusCode)
	}

	return map[string]any{
		"webhook_url":     webhookURL,
		"response_status": resp.StatusCode,
		"sent_at":         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// =============================================================================
// Form
// =============================================================================

// FormChannel prepares form submissions. Platforms behind request forms have
// no submission API, so the channel records the prepared submission and
// leaves the final click to an operator.
type FormChannel struct {
	logger *slog.Logger
}

func NewFormChannel(logger *slog.Logger) *FormChannel {
	return &FormChannel{logger: logger}
}

func (c *FormChannel) Method() string { return MethodForm }

func (c *FormChannel) Send(ctx context.Context, record Record) (map[string]any, error) {
	formURL := record.Notification.FormURL
	if formURL == "" {
		formURL = notification.RequirementsFor(record.Platform).Contact.FormURL
	}
	if formURL == "" {
		return nil, fmt.Errorf("form URL not available for platform %s", record.Platform)
	}

	c.logger.InfoContext(ctx, "form submission prepared",
		"platform", record.Platform,
		"form_url", formURL,
		"notification_id", record.NotificationID,
	)

	return map[string]any{
		"form_url":          formURL,
		"submission_method": "prepared",
		"sent_at":           time.Now().UTC().Format(time.RFC3339),
		"note":              "form submission prepared - manual submission may be required",
	}, nil
}
