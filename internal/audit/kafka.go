package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink streams audit events to a Kafka topic for downstream consumers
// (compliance archival, SIEM). The local store remains the read model; the
// stream is fire-and-forget from the pipeline's point of view.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

// streamPayload is the JSON structure produced to Kafka.
type streamPayload struct {
	LogID       string         `json:"log_id"`
	UserID      string         `json:"user_id"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	AIService   string         `json:"ai_service,omitempty"`
	InputData   map[string]any `json:"input_data,omitempty"`
	OutputData  map[string]any `json:"output_data,omitempty"`
	Status      string         `json:"status"`
	RequestID   string         `json:"request_id,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Hash        string         `json:"hash_signature"`
}

// Publish produces one event, keyed by user ID so a user's trail stays
// ordered within a partition.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(streamPayload{
		LogID:       event.LogID.String(),
		UserID:      event.UserID.String(),
		EventType:   event.EventType,
		Description: event.Description,
		AIService:   event.AIService,
		InputData:   event.InputData,
		OutputData:  event.OutputData,
		Status:      string(event.Status),
		RequestID:   event.RequestID,
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
		Hash:        event.Hash,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() {
	s.client.Close()
}
