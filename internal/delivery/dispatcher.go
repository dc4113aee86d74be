package delivery

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"time"

	"legatum/internal/audit"
	"legatum/internal/notification"
	"legatum/internal/platform/config"
	"legatum/internal/platform/metrics"
	id "legatum/pkg/domain"
)

// retryMultiplier doubles the wait between delivery retries.
const retryMultiplier = 2.0

// AuditPublisher records delivery events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Dispatcher routes notifications to their delivery channel and owns the
// retry queue. Every notification gets a persistent record; retries resend
// the stored notification, not a reconstruction.
type Dispatcher struct {
	store    Store
	channels map[string]Channel
	cfg      config.DeliveryConfig

	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	now     func() time.Time
}

// DispatcherOption configures optional Dispatcher collaborators.
type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithAuditPublisher(auditor AuditPublisher) DispatcherOption {
	return func(d *Dispatcher) { d.auditor = auditor }
}

// WithChannel registers or replaces a delivery channel.
func WithChannel(channel Channel) DispatcherOption {
	return func(d *Dispatcher) { d.channels[channel.Method()] = channel }
}

func withClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher wires the standard channels from config. Tests and callers
// with custom transports override channels via WithChannel.
func NewDispatcher(store Store, cfg config.DeliveryConfig, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("delivery store is required")
	}
	d := &Dispatcher{
		store:    store,
		channels: make(map[string]Channel),
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, channel := range []Channel{
		NewEmailChannel(cfg),
		NewAPIChannel(d.logger),
		NewWebhookChannel(cfg.WebhookSecret),
		NewFormChannel(d.logger),
	} {
		if _, ok := d.channels[channel.Method()]; !ok {
			d.channels[channel.Method()] = channel
		}
	}
	return d, nil
}

// Deliver sends one notification. The method defaults to what the generator
// chose; an explicit methodOverride re-routes it. Failures inside the retry
// budget schedule a retry instead of surfacing an error.
func (d *Dispatcher) Deliver(ctx context.Context, n notification.Notification, target Target, methodOverride string, userID id.UserID) (Result, error) {
	method := methodOverride
	if method == "" {
		method = n.DeliveryMethod
	}
	if method == "" {
		method = MethodEmail
	}

	record := Record{
		NotificationID: n.NotificationID,
		UserID:         userID,
		Platform:       n.Platform,
		Method:         method,
		Status:         StatusPending,
		CreatedAt:      d.now().UTC(),
		Notification:   n,
		Target:         target,
	}
	if record.NotificationID.IsNil() {
		record.NotificationID = id.NewNotificationID()
		record.Notification.NotificationID = record.NotificationID
	}

	return d.attempt(ctx, record)
}

// attempt runs one send and persists the resulting record state.
func (d *Dispatcher) attempt(ctx context.Context, record Record) (Result, error) {
	record.Attempts++
	record.LastAttempt = d.now().UTC()

	channel, ok := d.channels[record.Method]
	var details map[string]any
	var err error
	if !ok {
		err = fmt.Errorf("unsupported delivery method: %s", record.Method)
	} else {
		details, err = channel.Send(ctx, record)
	}

	if err != nil {
		return d.recordFailure(ctx, record, err)
	}

	record.Status = StatusSent
	record.ErrorMessage = ""
	record.NextRetry = time.Time{}
	record.Details = details
	record.UpdatedAt = d.now().UTC()
	if saveErr := d.store.Save(ctx, record); saveErr != nil {
		return Result{}, fmt.Errorf("save delivery record: %w", saveErr)
	}

	d.countDelivery(record.Method, "sent")
	d.emitAudit(ctx, record.UserID, audit.Event{
		EventType:   audit.EventNotificationDelivered,
		Description: fmt.Sprintf("delivered notification to %s via %s", record.Platform, record.Method),
		InputData:   map[string]any{"notification_id": record.NotificationID.String()},
		OutputData:  details,
	})

	return Result{
		NotificationID: record.NotificationID,
		Status:         StatusSent,
		Details:        details,
	}, nil
}

// recordFailure schedules a retry while the budget allows; the final
// attempt leaves the record failed.
func (d *Dispatcher) recordFailure(ctx context.Context, record Record, sendErr error) (Result, error) {
	record.ErrorMessage = sendErr.Error()
	record.UpdatedAt = d.now().UTC()

	if record.Attempts < d.cfg.MaxRetries {
		delay := retryDelay(d.cfg.RetryBaseDelay, d.cfg.RetryMaxDelay, record.Attempts)
		record.Status = StatusRetry
		record.NextRetry = d.now().UTC().Add(delay)
		d.countRetryScheduled()
	} else {
		record.Status = StatusFailed
		record.NextRetry = time.Time{}
	}

	if saveErr := d.store.Save(ctx, record); saveErr != nil {
		return Result{}, fmt.Errorf("save delivery record: %w", saveErr)
	}

	d.logger.ErrorContext(ctx, "notification delivery failed",
		"notification_id", record.NotificationID,
		"platform", record.Platform,
		"method", record.Method,
		"attempts", record.Attempts,
		"status", record.Status,
		"error", sendErr,
	)
	d.countDelivery(record.Method, string(record.Status))
	d.emitAudit(ctx, record.UserID, audit.Event{
		EventType:   audit.EventDeliveryFailed,
		Description: fmt.Sprintf("failed to deliver notification to %s: %v", record.Platform, sendErr),
		InputData: map[string]any{
			"notification_id": record.NotificationID.String(),
			"attempts":        record.Attempts,
		},
		Status: audit.StatusFailure,
	})

	return Result{
		NotificationID: record.NotificationID,
		Status:         record.Status,
		ErrorMessage:   record.ErrorMessage,
		RetryScheduled: record.Status == StatusRetry,
		NextRetry:      record.NextRetry,
	}, nil
}

// retryDelay grows exponentially from the base and caps at the maximum.
func retryDelay(base, maxDelay time.Duration, attempts int) time.Duration {
	delay := time.Duration(float64(base) * math.Pow(retryMultiplier, float64(attempts-1)))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// BatchDeliver sends a set of notifications, counting outcomes. One bad
// notification never aborts the batch.
func (d *Dispatcher) BatchDeliver(ctx context.Context, notifications []notification.Notification, target Target, userID id.UserID) BatchResult {
	result := BatchResult{
		BatchID:   d.batchID(userID),
		Total:     len(notifications),
		StartedAt: d.now().UTC(),
	}

	d.emitAudit(ctx, userID, audit.Event{
		EventType:   audit.EventBatchStarted,
		Description: fmt.Sprintf("starting batch delivery of %d notifications", len(notifications)),
		InputData: map[string]any{
			"batch_id":           result.BatchID,
			"notification_count": len(notifications),
		},
		Status: audit.StatusPending,
	})

	for _, n := range notifications {
		deliverResult, err := d.Deliver(ctx, n, target, "", userID)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, Result{
				NotificationID: n.NotificationID,
				Status:         StatusFailed,
				ErrorMessage:   err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, deliverResult)
		if deliverResult.Status.Succeeded() {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	result.CompletedAt = d.now().UTC()

	status := audit.StatusSuccess
	if result.Failed > 0 {
		status = audit.StatusFailure
	}
	d.emitAudit(ctx, userID, audit.Event{
		EventType: audit.EventBatchCompleted,
		Description: fmt.Sprintf("batch delivery complete: %d successful, %d failed",
			result.Successful, result.Failed),
		InputData: map[string]any{"batch_id": result.BatchID},
		OutputData: map[string]any{
			"successful_deliveries": result.Successful,
			"failed_deliveries":     result.Failed,
		},
		Status: status,
	})
	return result
}

// Status returns the delivery record for one notification.
func (d *Dispatcher) Status(ctx context.Context, notificationID id.NotificationID) (Record, error) {
	return d.store.Get(ctx, notificationID)
}

// UpdateStatus overrides a record's status, for operators confirming a
// platform acted on a notification.
func (d *Dispatcher) UpdateStatus(ctx context.Context, notificationID id.NotificationID, status Status, details map[string]any) error {
	record, err := d.store.Get(ctx, notificationID)
	if err != nil {
		return err
	}

	record.Status = status
	record.UpdatedAt = d.now().UTC()
	if details != nil {
		if record.Details == nil {
			record.Details = make(map[string]any, len(details))
		}
		for key, value := range details {
			record.Details[key] = value
		}
	}
	return d.store.Save(ctx, record)
}

// PendingRetries lists records whose retry time has come.
func (d *Dispatcher) PendingRetries(ctx context.Context) ([]Record, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	var pending []Record
	for _, record := range records {
		if record.RetryDue(now) {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

// ProcessRetryQueue re-attempts every due retry. Records that have exhausted
// the budget are expired, not retried.
func (d *Dispatcher) ProcessRetryQueue(ctx context.Context, userID id.UserID) (RetryResult, error) {
	pending, err := d.PendingRetries(ctx)
	if err != nil {
		return RetryResult{}, err
	}

	result := RetryResult{Processed: len(pending)}
	for _, record := range pending {
		if record.Attempts >= d.cfg.MaxRetries {
			record.Status = StatusExpired
			record.NextRetry = time.Time{}
			record.UpdatedAt = d.now().UTC()
			if err := d.store.Save(ctx, record); err != nil {
				return result, fmt.Errorf("save delivery record: %w", err)
			}
			result.Expired++
			continue
		}

		d.emitAudit(ctx, record.UserID, audit.Event{
			EventType:   audit.EventDeliveryRetried,
			Description: fmt.Sprintf("retrying notification delivery to %s (attempt %d)", record.Platform, record.Attempts+1),
			InputData:   map[string]any{"notification_id": record.NotificationID.String()},
		})

		attemptResult, err := d.attempt(ctx, record)
		if err != nil {
			return result, err
		}
		result.Results = append(result.Results, attemptResult)
		if attemptResult.Status.Succeeded() {
			result.Successful++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// Statistics aggregates delivery outcomes across all tracked notifications.
func (d *Dispatcher) Statistics(ctx context.Context) (Statistics, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Total:      len(records),
		ByStatus:   make(map[string]int),
		ByPlatform: make(map[string]int),
		ByMethod:   make(map[string]int),
	}

	successful := 0
	for _, record := range records {
		stats.ByStatus[string(record.Status)]++
		stats.ByPlatform[record.Platform]++
		stats.ByMethod[record.Method]++
		if record.Status.Succeeded() {
			successful++
		}
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(successful) / float64(stats.Total)
	}
	return stats, nil
}

func (d *Dispatcher) batchID(userID id.UserID) string {
	h := fnv.New32a()
	h.Write([]byte(userID.String()))
	return fmt.Sprintf("batch_%s_%04d", d.now().UTC().Format("20060102_150405"), h.Sum32()%10000)
}

func (d *Dispatcher) countDelivery(method, outcome string) {
	if d.metrics != nil {
		d.metrics.DeliveriesTotal.WithLabelValues(method, outcome).Inc()
	}
}

func (d *Dispatcher) countRetryScheduled() {
	if d.metrics != nil {
		d.metrics.RetriesScheduled.Inc()
	}
}

func (d *Dispatcher) emitAudit(ctx context.Context, userID id.UserID, event audit.Event) {
	if d.auditor == nil {
		return
	}
	event.UserID = userID
	if err := d.auditor.Emit(ctx, event); err != nil {
		d.logger.ErrorContext(ctx, "audit emit failed",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
