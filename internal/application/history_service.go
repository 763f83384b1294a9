package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/internal/domain/history"
	"github.com/leavedesk/service-booking/pkg/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryEntryDTO is the response representation of a history entry.
type HistoryEntryDTO struct {
	ID          uuid.UUID               `json:"id"`
	Action      string                  `json:"action"`
	BookingID   uuid.UUID               `json:"booking_id"`
	UserID      string                  `json:"user_id"`
	UserName    string                  `json:"user_name"`
	Timestamp   time.Time               `json:"timestamp"`
	OldData     *bookingDomain.Snapshot `json:"old_data,omitempty"`
	NewData     *bookingDomain.Snapshot `json:"new_data,omitempty"`
	BookingData *bookingDomain.Snapshot `json:"booking_data,omitempty"`
}

// HistoryService handles booking history queries.
type HistoryService struct {
	repo   history.HistoryRepository
	logger *zap.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(repo history.HistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: logger}
}

// ListForBooking returns the audit trail of one booking, oldest first.
// Members may only read the history of their own bookings.
func (s *HistoryService) ListForBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]HistoryEntryDTO, error) {
	entries, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking history: %w", err)
	}
	if len(entries) == 0 {
		return nil, domain.NewNotFoundError("Booking history", bookingID.String())
	}
	if !actor.IsAdmin && entries[0].UserID() != actor.UserID {
		return nil, domain.NewForbiddenError("you can only view the history of your own bookings")
	}
	return toHistoryDTOs(entries), nil
}

// ListRecent returns the newest history entries across all bookings (admin).
func (s *HistoryService) ListRecent(ctx context.Context, limit int) ([]HistoryEntryDTO, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking history: %w", err)
	}
	return toHistoryDTOs(entries), nil
}

func toHistoryDTOs(entries []*history.Entry) []HistoryEntryDTO {
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = HistoryEntryDTO{
			ID:          e.ID(),
			Action:      string(e.Action()),
			BookingID:   e.BookingID(),
			UserID:      e.UserID(),
			UserName:    e.UserName(),
			Timestamp:   e.Timestamp(),
			OldData:     e.OldData(),
			NewData:     e.NewData(),
			BookingData: e.BookingData(),
		}
	}
	return dtos
}
