// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"legatum/internal/platform/metrics"
	"legatum/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator

	Verification  *VerificationHandler
	Policies      *PoliciesHandler
	Notifications *NotificationsHandler
	Services      *ServicesHandler
	Audit         *AuditHandler
}

// NewRouter wires all endpoints behind the standard middleware chain. The
// service health probe stays outside authentication so orchestrators can
// reach it.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Group(func(open chi.Router) {
		deps.Services.RegisterHealth(open)
		open.Handle("/metrics", promhttp.Handler())
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))
		deps.Verification.Register(authed)
		deps.Policies.Register(authed)
		deps.Notifications.Register(authed)
		deps.Services.Register(authed)
		deps.Audit.Register(authed)
	})

	return r
}
