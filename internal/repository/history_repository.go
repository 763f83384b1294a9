package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/internal/domain/history"
)

// HistoryModel is the GORM model for the booking_history table.
type HistoryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Action      string          `gorm:"size:10;not null"`
	BookingID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	UserID      string          `gorm:"size:64;not null;index"`
	UserName    string          `gorm:"size:255;not null"`
	Timestamp   time.Time       `gorm:"not null;index"`
	OldData     json.RawMessage `gorm:"type:jsonb"`
	NewData     json.RawMessage `gorm:"type:jsonb"`
	BookingData json.RawMessage `gorm:"type:jsonb"`
}

// TableName returns the table name for the GORM model.
func (HistoryModel) TableName() string {
	return "booking_history"
}

// GormHistoryRepository implements HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts a history entry.
func (r *GormHistoryRepository) Append(ctx context.Context, e *history.Entry) error {
	model, err := toHistoryModel(e)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append booking history: %w", err)
	}
	return nil
}

// FindByBookingID returns all entries for a booking, oldest first.
func (r *GormHistoryRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*history.Entry, error) {
	var models []HistoryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("timestamp ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking history: %w", err)
	}
	return toDomainEntries(models)
}

// ListRecent returns the newest entries across all bookings.
func (r *GormHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*history.Entry, error) {
	var models []HistoryModel
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking history: %w", err)
	}
	return toDomainEntries(models)
}

func toHistoryModel(e *history.Entry) (*HistoryModel, error) {
	oldData, err := marshalSnapshot(e.OldData())
	if err != nil {
		return nil, err
	}
	newData, err := marshalSnapshot(e.NewData())
	if err != nil {
		return nil, err
	}
	bookingData, err := marshalSnapshot(e.BookingData())
	if err != nil {
		return nil, err
	}
	return &HistoryModel{
		ID:          e.ID(),
		Action:      string(e.Action()),
		BookingID:   e.BookingID(),
		UserID:      e.UserID(),
		UserName:    e.UserName(),
		Timestamp:   e.Timestamp(),
		OldData:     oldData,
		NewData:     newData,
		BookingData: bookingData,
	}, nil
}

func toDomainEntries(models []HistoryModel) ([]*history.Entry, error) {
	entries := make([]*history.Entry, len(models))
	for i, m := range models {
		oldData, err := unmarshalSnapshot(m.OldData)
		if err != nil {
			return nil, err
		}
		newData, err := unmarshalSnapshot(m.NewData)
		if err != nil {
			return nil, err
		}
		bookingData, err := unmarshalSnapshot(m.BookingData)
		if err != nil {
			return nil, err
		}
		e, err := history.Reconstruct(m.ID, history.Action(m.Action), m.BookingID, m.UserID, m.UserName, m.Timestamp, oldData, newData, bookingData)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

func marshalSnapshot(s *bookingDomain.Snapshot) (json.RawMessage, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking snapshot: %w", err)
	}
	return data, nil
}

func unmarshalSnapshot(data json.RawMessage) (*bookingDomain.Snapshot, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var s bookingDomain.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking snapshot: %w", err)
	}
	return &s, nil
}
