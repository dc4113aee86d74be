package delivery

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legatum/internal/notification"
	"legatum/internal/platform/config"
	id "legatum/pkg/domain"
)

func deliveryRecord(platform string) Record {
	return Record{
		NotificationID: id.NewNotificationID(),
		Platform:       platform,
		Notification: notification.Notification{
			Subject:           "Account Closure Request",
			Body:              "Please close the account of John Doe.",
			ActionType:        "delete",
			AccountIdentifier: "john.doe@example.com",
			RequiredDocuments: []string{"death_certificate"},
		},
	}
}

func TestEmailChannel(t *testing.T) {
	cfg := config.DeliveryConfig{SMTPAddr: "smtp.example.com:587", SMTPFrom: "no-reply@legatum.local"}

	t.Run("explicit recipient wins", func(t *testing.T) {
		channel := NewEmailChannel(cfg)
		var gotTo []string
		var gotMsg []byte
		channel.send = func(addr, from string, to []string, msg []byte) error {
			gotTo = to
			gotMsg = msg
			return nil
		}

		record := deliveryRecord("google")
		record.Target.RecipientEmail = "legal@example.com"

		details, err := channel.Send(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, []string{"legal@example.com"}, gotTo)
		assert.Equal(t, "legal@example.com", details["to_email"])
		assert.Contains(t, string(gotMsg), "Subject: Account Closure Request")
		assert.Contains(t, string(gotMsg), "Please close the account")
	})

	t.Run("platform contact email is the default recipient", func(t *testing.T) {
		channel := NewEmailChannel(cfg)
		var gotTo []string
		channel.send = func(addr, from string, to []string, msg []byte) error {
			gotTo = to
			return nil
		}

		_, err := channel.Send(context.Background(), deliveryRecord("google"))
		require.NoError(t, err)
		assert.Equal(t, []string{"accounts-support@google.com"}, gotTo)
	})

	t.Run("no recipient anywhere is an error", func(t *testing.T) {
		channel := NewEmailChannel(cfg)
		channel.send = func(string, string, []string, []byte) error {
			t.Fatal("send should not be called")
			return nil
		}

		_, err := channel.Send(context.Background(), deliveryRecord("myspace"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no recipient email")
	})

	t.Run("unconfigured smtp is an error", func(t *testing.T) {
		channel := NewEmailChannel(config.DeliveryConfig{})
		_, err := channel.Send(context.Background(), deliveryRecord("google"))
		require.Error(t, err)
	})
}

func TestWebhookChannel(t *testing.T) {
	const secret = "webhook-signing-secret"

	t.Run("payload is signed and accepted", func(t *testing.T) {
		var gotSignature string
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSignature = r.Header.Get("X-Webhook-Signature")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		channel := NewWebhookChannel(secret)
		record := deliveryRecord("facebook")
		record.Target.WebhookURL = server.URL

		details, err := channel.Send(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, server.URL, details["webhook_url"])

		require.True(t, strings.HasPrefix(gotSignature, "sha256="))
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(gotBody)
		assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSignature)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(gotBody, &payload))
		assert.Equal(t, "death_notification", payload["event_type"])
		assert.Equal(t, "facebook", payload["platform"])
	})

	t.Run("no signature header without a secret", func(t *testing.T) {
		var gotSignature string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSignature = r.Header.Get("X-Webhook-Signature")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		channel := NewWebhookChannel("")
		record := deliveryRecord("facebook")
		record.Target.WebhookURL = server.URL

		_, err := channel.Send(context.Background(), record)
		require.NoError(t, err)
		assert.Empty(t, gotSignature)
	})

	t.Run("server errors surface", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		channel := NewWebhookChannel(secret)
		record := deliveryRecord("facebook")
		record.Target.WebhookURL = server.URL

		_, err := channel.Send(context.Background(), record)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("missing URL is an error", func(t *testing.T) {
		channel := NewWebhookChannel(secret)
		_, err := channel.Send(context.Background(), deliveryRecord("facebook"))
		require.Error(t, err)
	})
}

func TestAPIChannel(t *testing.T) {
	t.Run("registered platform posts with bearer token", func(t *testing.T) {
		var gotAuth string
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &gotPayload)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		channel := NewAPIChannel(slog.New(slog.DiscardHandler))
		channel.endpoints = map[string]platformEndpoint{
			"google": {URL: server.URL, AuthRequired: true},
		}
		channel.token = func(string) string { return "test-token" }

		details, err := channel.Send(context.Background(), deliveryRecord("google"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer test-token", gotAuth)
		assert.Equal(t, "john.doe@example.com", gotPayload["account_identifier"])
		assert.Equal(t, http.StatusOK, details["response_status"])
	})

	t.Run("unregistered platform is an error", func(t *testing.T) {
		channel := NewAPIChannel(slog.New(slog.DiscardHandler))
		_, err := channel.Send(context.Background(), deliveryRecord("myspace"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no API configuration")
	})
}

func TestFormChannel(t *testing.T) {
	channel := NewFormChannel(slog.New(slog.DiscardHandler))

	t.Run("notification form URL wins", func(t *testing.T) {
		record := deliveryRecord("facebook")
		record.Notification.FormURL = "https://example.com/custom-form"

		details, err := channel.Send(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/custom-form", details["form_url"])
	})

	t.Run("platform registry provides the fallback URL", func(t *testing.T) {
		details, err := channel.Send(context.Background(), deliveryRecord("facebook"))
		require.NoError(t, err)
		assert.Equal(t, "https://www.facebook.com/help/contact/228813257197480", details["form_url"])
	})

	t.Run("no form URL anywhere is an error", func(t *testing.T) {
		_, err := channel.Send(context.Background(), deliveryRecord("chase_bank"))
		require.Error(t, err)
	})
}
