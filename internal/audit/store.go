package audit

import (
	"context"

	"github.com/google/uuid"

	id "legatum/pkg/domain"
)

// Store persists audit events. Implementations are append-only; events are
// never updated or deleted once written.
type Store interface {
	Append(ctx context.Context, event Event) error
	GetByID(ctx context.Context, logID uuid.UUID) (*Event, error)
	ListByUser(ctx context.Context, userID id.UserID, filter Filter) ([]Event, error)
}
