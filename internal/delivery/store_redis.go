package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

const (
	// Redis key prefix for delivery records, plus an index set so List
	// never needs SCAN.
	recordKeyPrefix = "delivery:record:"
	recordIndexKey  = "delivery:records"
)

// RedisStore is a Redis-backed delivery store for deployments where
// multiple instances share the retry queue.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal delivery record: %w", err)
	}

	key := recordKeyPrefix + record.NotificationID.String()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, payload, 0)
	pipe.SAdd(ctx, recordIndexKey, record.NotificationID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save delivery record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, notificationID id.NotificationID) (Record, error) {
	payload, err := s.client.Get(ctx, recordKeyPrefix+notificationID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "delivery record not found")
	}
	if err != nil {
		return Record{}, fmt.Errorf("load delivery record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, fmt.Errorf("unmarshal delivery record: %w", err)
	}
	return record, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, recordIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list delivery records: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, notificationID := range ids {
		keys[i] = recordKeyPrefix + notificationID
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load delivery records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for _, value := range values {
		payload, ok := value.(string)
		if !ok {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("unmarshal delivery record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}
