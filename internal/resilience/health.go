package resilience

import "time"

// ServiceStatus describes a dependency's current health.
type ServiceStatus string

const (
	StatusAvailable   ServiceStatus = "available"
	StatusDegraded    ServiceStatus = "degraded"
	StatusUnavailable ServiceStatus = "unavailable"
)

// ServiceHealth is a point-in-time snapshot of one dependency.
type ServiceHealth struct {
	Service      string        `json:"service"`
	Status       ServiceStatus `json:"status"`
	FailureCount int           `json:"failure_count"`
	LastFailure  time.Time     `json:"last_failure,omitzero"`
	CircuitOpen  bool          `json:"circuit_open"`
	RetryAfter   time.Duration `json:"retry_after,omitempty"`
}

// serviceState is the manager's mutable record for one service. Guarded by
// the manager's mutex.
type serviceState struct {
	failureCount int
	lastFailure  time.Time
	circuitOpen  bool
	openedAt     time.Time
}

func (s *serviceState) status() ServiceStatus {
	switch {
	case s.failureCount >= unavailableThreshold:
		return StatusUnavailable
	case s.failureCount > 1:
		return StatusDegraded
	default:
		return StatusAvailable
	}
}

const unavailableThreshold = 5
