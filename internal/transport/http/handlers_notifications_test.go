package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legatum/internal/clients/llm"
	"legatum/internal/delivery"
	"legatum/internal/interpret"
	"legatum/internal/notification"
	"legatum/internal/platform/config"
	"legatum/internal/resilience"
	id "legatum/pkg/domain"
)

type staticLLM struct {
	response string
	err      error
}

func (s *staticLLM) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return s.response, s.err
}

type recordingChannel struct {
	method string
	sent   int
}

func (c *recordingChannel) Method() string { return c.method }

func (c *recordingChannel) Send(context.Context, delivery.Record) (map[string]any, error) {
	c.sent++
	return map[string]any{"delivered": true}, nil
}

type notificationsFixture struct {
	router  chi.Router
	library *notification.Library
	channel *recordingChannel
}

func newNotificationsFixture(t *testing.T) *notificationsFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	library := notification.NewLibrary()
	manager := resilience.NewManager(config.ResilienceConfig{
		MaxRetries:       1,
		BaseDelay:        time.Millisecond,
		FailureThreshold: 100,
		CooldownPeriod:   time.Minute,
	})
	generator, err := notification.NewGenerator(library, &staticLLM{}, manager)
	require.NoError(t, err)

	channel := &recordingChannel{method: delivery.MethodEmail}
	dispatcher, err := delivery.NewDispatcher(
		delivery.NewInMemoryStore(),
		config.DeliveryConfig{MaxRetries: 3, RetryBaseDelay: 5 * time.Minute, RetryMaxDelay: time.Hour},
		delivery.WithChannel(channel),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	NewNotificationsHandler(generator, library, dispatcher, logger).Register(router)
	return &notificationsFixture{router: router, library: library, channel: channel}
}

func (f *notificationsFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const testUserID = "7f9c24e5-2f22-4d2c-9e6a-8a0c1b3d4e5f"

func TestNotificationsHandler_Generate(t *testing.T) {
	t.Run("generates batch from interpretations", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/generate", generateRequest{
			UserID:       testUserID,
			DeceasedInfo: notification.DeceasedInfo{FullName: "Jane Smith", ContactName: "John Smith"},
			Interpretations: []interpret.Interpretation{{
				ActionType:   "memorialize",
				PlatformName: "facebook",
			}},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var result notification.BatchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Successful)
		require.Len(t, result.Notifications, 1)
		assert.Contains(t, result.Notifications[0].Subject, "Jane Smith")
	})

	t.Run("missing deceased name is rejected", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/generate", generateRequest{
			UserID:          testUserID,
			Interpretations: []interpret.Interpretation{{ActionType: "delete", PlatformName: "google"}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty interpretation list is rejected", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/generate", generateRequest{
			UserID:       testUserID,
			DeceasedInfo: notification.DeceasedInfo{FullName: "Jane Smith"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNotificationsHandler_Deliver(t *testing.T) {
	notif := notification.Notification{
		Subject:        "Account Closure Request",
		Body:           "Please close this account.",
		DeliveryMethod: delivery.MethodEmail,
		Platform:       "google",
	}

	t.Run("delivers and tracks status", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/deliver", deliverRequest{
			UserID:       testUserID,
			Notification: notif,
			Target:       delivery.Target{RecipientEmail: "support@example.com"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, f.channel.sent)

		var result delivery.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, delivery.StatusSent, result.Status)
		require.False(t, result.NotificationID.IsNil())

		status := f.do(t, http.MethodGet, "/notifications/"+result.NotificationID.String()+"/status", nil)
		require.Equal(t, http.StatusOK, status.Code)

		var record delivery.Record
		require.NoError(t, json.Unmarshal(status.Body.Bytes(), &record))
		assert.Equal(t, delivery.StatusSent, record.Status)
		assert.Equal(t, 1, record.Attempts)
	})

	t.Run("empty notification is rejected", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/deliver", deliverRequest{
			UserID: testUserID,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, f.channel.sent)
	})

	t.Run("unknown notification status is 404", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodGet, "/notifications/"+id.NewNotificationID().String()+"/status", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("batch delivery reports counts", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/deliver/batch", deliverBatchRequest{
			UserID:        testUserID,
			Notifications: []notification.Notification{notif, notif},
			Target:        delivery.Target{RecipientEmail: "support@example.com"},
		})

		require.Equal(t, http.StatusOK, w.Code)

		var result delivery.BatchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Total)
		assert.Equal(t, 2, result.Successful)
	})

	t.Run("empty retry queue processes cleanly", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/notifications/retries/process", processRetriesRequest{UserID: testUserID})

		require.Equal(t, http.StatusOK, w.Code)

		var result delivery.RetryResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 0, result.Processed)
	})

	t.Run("statistics aggregate deliveries", func(t *testing.T) {
		f := newNotificationsFixture(t)

		resp := f.do(t, http.MethodPost, "/notifications/deliver", deliverRequest{
			UserID:       testUserID,
			Notification: notif,
			Target:       delivery.Target{RecipientEmail: "support@example.com"},
		})
		require.Equal(t, http.StatusOK, resp.Code)

		w := f.do(t, http.MethodGet, "/delivery/statistics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats delivery.Statistics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 1, stats.ByMethod[delivery.MethodEmail])
	})
}

func TestNotificationsHandler_Templates(t *testing.T) {
	custom := notification.Template{
		Subject:        "Estate Notice - {full_name}",
		Body:           "We write regarding the account {account_identifier} of {full_name}.",
		DeliveryMethod: notification.TemplateEmail,
	}

	t.Run("creates and lists custom template", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/templates", createTemplateRequest{
			UserID:   testUserID,
			Platform: "spotify",
			Action:   "delete",
			Type:     notification.TemplateEmail,
			Template: custom,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		list := f.do(t, http.MethodGet, "/templates?platform=spotify", nil)
		require.Equal(t, http.StatusOK, list.Code)

		var listing notification.TemplateListing
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listing))
		assert.Contains(t, listing.Custom, "spotify")
	})

	t.Run("rejects template without platform", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodPost, "/templates", createTemplateRequest{
			UserID:   testUserID,
			Action:   "delete",
			Template: custom,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("export and import round trip", func(t *testing.T) {
		f := newNotificationsFixture(t)

		created := f.do(t, http.MethodPost, "/templates", createTemplateRequest{
			UserID:   testUserID,
			Platform: "spotify",
			Action:   "delete",
			Type:     notification.TemplateEmail,
			Template: custom,
		})
		require.Equal(t, http.StatusCreated, created.Code)

		exported := f.do(t, http.MethodGet, "/templates/export", nil)
		require.Equal(t, http.StatusOK, exported.Code)

		var export notification.TemplateExport
		require.NoError(t, json.Unmarshal(exported.Body.Bytes(), &export))
		require.Len(t, export.Templates, 1)

		other := newNotificationsFixture(t)
		imported := other.do(t, http.MethodPost, "/templates/import", importTemplatesRequest{
			UserID: testUserID,
			Export: export,
		})
		require.Equal(t, http.StatusOK, imported.Code)

		var result notification.ImportResult
		require.NoError(t, json.Unmarshal(imported.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Imported)
	})

	t.Run("statistics count both tiers", func(t *testing.T) {
		f := newNotificationsFixture(t)

		w := f.do(t, http.MethodGet, "/templates/statistics", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats notification.TemplateStatistics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Greater(t, stats.BuiltinCount, 0)
		assert.Equal(t, 0, stats.CustomCount)
	})
}
