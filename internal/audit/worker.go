package audit

import (
	"context"
	"log/slog"
)

// Sink receives audit events for out-of-process delivery.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from a channel and forwards them to the sink.
// Publish failures are logged and skipped; the store already holds the
// authoritative copy.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit stream publish failed",
					"log_id", event.LogID,
					"event_type", event.EventType,
					"error", err,
				)
			}
		}
	}
}
