package delivery

import (
	"context"

	id "legatum/pkg/domain"
)

// Store persists delivery records. Writes replace the whole record; the
// dispatcher is the only writer.
type Store interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, notificationID id.NotificationID) (Record, error)
	List(ctx context.Context) ([]Record, error)
}
