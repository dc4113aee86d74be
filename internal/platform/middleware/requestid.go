package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"legatum/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// RequestID attaches a request ID to the context and response. An inbound
// X-Request-ID header is trusted so IDs survive proxy hops.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
