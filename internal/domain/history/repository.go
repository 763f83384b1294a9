package history

import (
	"context"

	"github.com/google/uuid"
)

// HistoryRepository defines persistence for the append-only audit log.
// Entries are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, entry *Entry) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}
