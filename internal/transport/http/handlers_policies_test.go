package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legatum/internal/domain"
	"legatum/internal/interpret"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

type stubPolicyReader struct {
	policies []domain.ActionPolicy
	err      error
}

func (s *stubPolicyReader) ListPoliciesByUser(context.Context, id.UserID) ([]domain.ActionPolicy, error) {
	return s.policies, s.err
}

type stubInterpreter struct {
	interpretations []interpret.Interpretation
	calls           int
}

func (s *stubInterpreter) InterpretPolicies(_ context.Context, _ []domain.ActionPolicy, _ id.UserID) []interpret.Interpretation {
	s.calls++
	return s.interpretations
}

func postInterpret(t *testing.T, handler *PoliciesHandler, body interpretRequest) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/policies/interpret", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handler.handleInterpret(w, req)
	return w
}

func TestPoliciesHandler_Interpret(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	userID := "7f9c24e5-2f22-4d2c-9e6a-8a0c1b3d4e5f"

	t.Run("interprets stored policies", func(t *testing.T) {
		reader := &stubPolicyReader{
			policies: []domain.ActionPolicy{{NaturalLanguagePolicy: "Delete my gmail account"}},
		}
		interpreter := &stubInterpreter{
			interpretations: []interpret.Interpretation{{
				ActionType:   "delete",
				PlatformName: "google",
				Confidence:   0.95,
			}},
		}
		handler := NewPoliciesHandler(reader, interpreter, logger)

		w := postInterpret(t, handler, interpretRequest{UserID: userID})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, interpreter.calls)

		var resp interpretResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID, resp.UserID)
		require.Len(t, resp.Interpretations, 1)
		assert.Equal(t, "google", resp.Interpretations[0].PlatformName)
	})

	t.Run("user without policies gets 404", func(t *testing.T) {
		handler := NewPoliciesHandler(&stubPolicyReader{}, &stubInterpreter{}, logger)

		w := postInterpret(t, handler, interpretRequest{UserID: userID})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		reader := &stubPolicyReader{
			err: dErrors.New(dErrors.CodeUnavailable, "policy store unreachable"),
		}
		interpreter := &stubInterpreter{}
		handler := NewPoliciesHandler(reader, interpreter, logger)

		w := postInterpret(t, handler, interpretRequest{UserID: userID})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 0, interpreter.calls)
	})

	t.Run("invalid user id is rejected", func(t *testing.T) {
		handler := NewPoliciesHandler(&stubPolicyReader{}, &stubInterpreter{}, logger)

		w := postInterpret(t, handler, interpretRequest{UserID: "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
