package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legatum/internal/audit"
	id "legatum/pkg/domain"
)

func newAuditFixture(t *testing.T) (chi.Router, *audit.Publisher, id.UserID) {
	t.Helper()

	publisher := audit.NewPublisher(audit.NewInMemoryStore(), slog.New(slog.DiscardHandler))
	router := chi.NewRouter()
	NewAuditHandler(publisher, slog.New(slog.DiscardHandler)).Register(router)

	userID, err := id.ParseUserID(testUserID)
	require.NoError(t, err)
	return router, publisher, userID
}

func TestAuditHandler_Trail(t *testing.T) {
	t.Run("returns a user's events", func(t *testing.T) {
		router, publisher, userID := newAuditFixture(t)
		ctx := context.Background()

		require.NoError(t, publisher.Emit(ctx, audit.Event{
			UserID:    userID,
			EventType: audit.EventVerificationSubmitted,
		}))
		require.NoError(t, publisher.Emit(ctx, audit.Event{
			UserID:    userID,
			EventType: audit.EventNotificationGenerated,
		}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/"+testUserID, nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp auditTrailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testUserID, resp.UserID)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("filters by event type and limit", func(t *testing.T) {
		router, publisher, userID := newAuditFixture(t)
		ctx := context.Background()

		for range 3 {
			require.NoError(t, publisher.Emit(ctx, audit.Event{
				UserID:    userID,
				EventType: audit.EventNotificationDelivered,
			}))
		}
		require.NoError(t, publisher.Emit(ctx, audit.Event{
			UserID:    userID,
			EventType: audit.EventDeliveryFailed,
		}))

		w := httptest.NewRecorder()
		target := "/audit/" + testUserID + "?event_type=notification_delivered&limit=2"
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp auditTrailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 2, resp.Count)
		for _, event := range resp.Events {
			assert.Equal(t, audit.EventNotificationDelivered, event.EventType)
		}
	})

	t.Run("invalid user id is rejected", func(t *testing.T) {
		router, _, _ := newAuditFixture(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuditHandler_Integrity(t *testing.T) {
	router, publisher, userID := newAuditFixture(t)
	ctx := context.Background()

	require.NoError(t, publisher.Emit(ctx, audit.Event{
		UserID:    userID,
		EventType: audit.EventVerificationCompleted,
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/"+testUserID+"/integrity", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var report audit.IntegrityReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalLogs)
	assert.Equal(t, 1, report.ValidLogs)
	assert.Empty(t, report.InvalidLogs)
}
