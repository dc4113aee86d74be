package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "legatum/pkg/domain"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. When a sink
// channel is configured, events are also handed to the background worker for
// Kafka publishing; a full channel never blocks the request path.
type Publisher struct {
	store  Store
	logger *slog.Logger
	sink   chan<- Event
}

// Option configures optional Publisher collaborators.
type Option func(*Publisher)

// WithSink attaches the channel consumed by the Kafka worker.
func WithSink(sink chan<- Event) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps, signs, and persists an event. The hash signature is computed
// after all fields are final so stored entries are tamper-evident.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.LogID == uuid.Nil {
		event.LogID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Status == "" {
		event.Status = StatusSuccess
	}
	event.Hash = event.ComputeHash()

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	if p.sink != nil {
		select {
		case p.sink <- event:
		default:
			p.logger.WarnContext(ctx, "audit sink full, dropping event from stream",
				"event_type", event.EventType,
				"log_id", event.LogID,
			)
		}
	}
	return nil
}

// Trail returns the audit trail for a user, optionally filtered.
func (p *Publisher) Trail(ctx context.Context, userID id.UserID, filter Filter) ([]Event, error) {
	return p.store.ListByUser(ctx, userID, filter)
}

// VerifyLog checks the tamper-evident signature of a single entry.
func (p *Publisher) VerifyLog(ctx context.Context, logID uuid.UUID) (bool, error) {
	event, err := p.store.GetByID(ctx, logID)
	if err != nil {
		return false, err
	}
	return event.VerifyIntegrity(), nil
}

// VerifyUserLogs sweeps a user's trail and reports entries whose content no
// longer matches their signature.
func (p *Publisher) VerifyUserLogs(ctx context.Context, userID id.UserID) (*IntegrityReport, error) {
	events, err := p.store.ListByUser(ctx, userID, Filter{})
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{TotalLogs: len(events)}
	for _, event := range events {
		if event.VerifyIntegrity() {
			report.ValidLogs++
		} else {
			report.InvalidLogs = append(report.InvalidLogs, event.LogID)
		}
	}
	return report, nil
}
