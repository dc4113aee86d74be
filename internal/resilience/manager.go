package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"legatum/internal/audit"
	"legatum/internal/platform/config"
	"legatum/internal/platform/metrics"
)

// AuditPublisher records circuit state changes for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CallOptions tunes retry behavior for a single service. Zero values fall
// back to the manager's configured defaults.
type CallOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Strategy   Strategy
}

// Manager coordinates retries, circuit breaking, and health tracking for all
// outbound service calls. It is injected into every client; there is no
// package-level instance.
type Manager struct {
	cfg     config.ResilienceConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher

	mu       sync.Mutex
	services map[string]*serviceState

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(m *Manager) { m.auditor = auditor }
}

// withClock overrides time for cooldown tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// withSleep overrides the backoff sleep for tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) { m.sleep = sleep }
}

func NewManager(cfg config.ResilienceConfig, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		services: make(map[string]*serviceState),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Call runs fn under retry and circuit breaker protection for the named
// service. Auth failures, missing resources, and non-retryable service
// errors return immediately; everything else retries with backoff until the
// attempt budget runs out.
func (m *Manager) Call(ctx context.Context, service string, opts CallOptions, fn func(context.Context) error) error {
	if err := m.checkCircuit(ctx, service); err != nil {
		return err
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = m.cfg.MaxRetries
	}
	baseDelay := opts.BaseDelay
	if baseDelay == 0 {
		baseDelay = m.cfg.BaseDelay
	}
	maxDelay := opts.MaxDelay
	if maxDelay == 0 {
		maxDelay = m.cfg.MaxDelay
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyExponential
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			m.recordSuccess(service)
			return nil
		}
		lastErr = err
		m.recordFailure(ctx, service)

		if !isRetryable(err) {
			return err
		}
		if attempt == maxRetries {
			break
		}

		delay := ComputeDelay(strategy, attempt, baseDelay, maxDelay)
		m.logger.WarnContext(ctx, "service call failed, retrying",
			"service", service,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay,
			"error", err,
		)
		if err := m.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("service %s failed after %d attempts: %w", service, maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return false
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return false
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return true
}

func (m *Manager) checkCircuit(ctx context.Context, service string) error {
	m.mu.Lock()
	state := m.state(service)
	if !state.circuitOpen {
		m.mu.Unlock()
		return nil
	}

	elapsed := m.now().Sub(state.openedAt)
	if elapsed < m.cfg.CooldownPeriod {
		retryAfter := m.cfg.CooldownPeriod - elapsed
		m.mu.Unlock()
		return &CircuitOpenError{Service: service, RetryAfter: retryAfter}
	}

	// Cooldown expired: close the circuit and let this call probe the
	// service. Re-check under the lock so only one caller resets.
	if state.circuitOpen {
		state.circuitOpen = false
		state.failureCount = 0
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "circuit cooldown expired, closing",
		"service", service,
	)
	m.emitAudit(ctx, audit.EventCircuitReset, service, "circuit closed after cooldown")
	return nil
}

func (m *Manager) recordFailure(ctx context.Context, service string) {
	m.mu.Lock()
	state := m.state(service)
	state.failureCount++
	state.lastFailure = m.now()
	opened := false
	if !state.circuitOpen && state.failureCount >= m.cfg.FailureThreshold {
		state.circuitOpen = true
		state.openedAt = m.now()
		opened = true
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ServiceFailures.WithLabelValues(service).Inc()
	}
	if opened {
		if m.metrics != nil {
			m.metrics.CircuitOpened.WithLabelValues(service).Inc()
		}
		m.logger.ErrorContext(ctx, "circuit opened",
			"service", service,
			"failure_threshold", m.cfg.FailureThreshold,
		)
		m.emitAudit(ctx, audit.EventCircuitOpened, service, "failure threshold reached")
	}
}

func (m *Manager) recordSuccess(service string) {
	m.mu.Lock()
	state := m.state(service)
	state.failureCount = 0
	state.circuitOpen = false
	state.lastFailure = time.Time{}
	m.mu.Unlock()
}

// state returns the record for service, creating it if needed. Callers hold
// the mutex.
func (m *Manager) state(service string) *serviceState {
	s, ok := m.services[service]
	if !ok {
		s = &serviceState{}
		m.services[service] = s
	}
	return s
}

// Health returns the snapshot for one service.
func (m *Manager) Health(service string) ServiceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(service, m.state(service))
}

// HealthSnapshot returns the health of every tracked service.
func (m *Manager) HealthSnapshot() map[string]ServiceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ServiceHealth, len(m.services))
	for name, state := range m.services {
		out[name] = m.snapshot(name, state)
	}
	return out
}

func (m *Manager) snapshot(service string, state *serviceState) ServiceHealth {
	h := ServiceHealth{
		Service:      service,
		Status:       state.status(),
		FailureCount: state.failureCount,
		LastFailure:  state.lastFailure,
		CircuitOpen:  state.circuitOpen,
	}
	if state.circuitOpen {
		if remaining := m.cfg.CooldownPeriod - m.now().Sub(state.openedAt); remaining > 0 {
			h.RetryAfter = remaining
		}
	}
	return h
}

// ResetCircuit manually closes a service's circuit and clears its failure
// count. Exposed through the operations API.
func (m *Manager) ResetCircuit(ctx context.Context, service string) {
	m.mu.Lock()
	state := m.state(service)
	state.circuitOpen = false
	state.failureCount = 0
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "circuit manually reset", "service", service)
	m.emitAudit(ctx, audit.EventCircuitReset, service, "manual reset")
}

func (m *Manager) emitAudit(ctx context.Context, eventType, service, reason string) {
	if m.auditor == nil {
		return
	}
	err := m.auditor.Emit(ctx, audit.Event{
		EventType:   eventType,
		Description: fmt.Sprintf("%s: %s", service, reason),
		OutputData:  map[string]any{"service": service},
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "audit emit failed",
			"event_type", eventType,
			"service", service,
			"error", err,
		)
	}
}
