package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leavedesk/service-booking/internal/calendar"
	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Date      time.Time  `gorm:"type:date;not null;index"`
	EndDate   *time.Time `gorm:"type:date;index"`
	UserID    string     `gorm:"size:64;not null;index"`
	UserName  string     `gorm:"size:255;not null"`
	Category  string     `gorm:"size:20;not null;index"`
	Reason    string     `gorm:"size:500"`
	Version   int64      `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByDate returns bookings whose inclusive range contains date. The SQL
// range condition is rechecked in Go before returning.
func (r *GormBookingRepository) FindByDate(ctx context.Context, date calendar.Date) ([]*bookingDomain.Booking, error) {
	day := date.Time()
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("date = ? OR (date <= ? AND end_date >= ?)", day, day, day).
		Order("date ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings on %s: %w", date, err)
	}

	bookings := make([]*bookingDomain.Booking, 0, len(models))
	for i := range models {
		bk := toDomainBooking(&models[i])
		if bk.Covers(date) {
			bookings = append(bookings, bk)
		}
	}
	return bookings, nil
}

// FindByUserAndMonth returns a user's bookings starting within the given month.
func (r *GormBookingRepository) FindByUserAndMonth(ctx context.Context, userID string, year int, month time.Month) ([]*bookingDomain.Booking, error) {
	first, last := calendar.MonthBounds(year, month)
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, first.Time(), last.Time()).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user bookings in %d-%02d: %w", year, month, err)
	}
	return toDomainBookings(models), nil
}

// FindInRange returns bookings overlapping [start, end], ordered by date.
func (r *GormBookingRepository) FindInRange(ctx context.Context, start, end calendar.Date) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("date <= ? AND COALESCE(end_date, date) >= ?", end.Time(), start.Time()).
		Order("date ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings between %s and %s: %w", start, end, err)
	}

	bookings := make([]*bookingDomain.Booking, 0, len(models))
	for i := range models {
		bk := toDomainBooking(&models[i])
		if bk.Overlaps(start, end) {
			bookings = append(bookings, bk)
		}
	}
	return bookings, nil
}

// FindByUserID returns all bookings of a user, ordered by date.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("date ASC, created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models), total, nil
}

// CountByCategory returns booking counts grouped by category (admin).
func (r *GormBookingRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	type categoryCount struct {
		Category string
		Count    int64
	}
	var results []categoryCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("category, count(*) as count").
		Group("category").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by category: %w", err)
	}

	counts := make(map[string]int64)
	for _, cc := range results {
		counts[cc.Category] = cc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion has already been called on bk.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"date":       model.Date,
			"end_date":   model.EndDate,
			"category":   model.Category,
			"reason":     model.Reason,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another request")
	}
	return nil
}

// Delete removes a booking.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	model := &BookingModel{
		ID:        bk.ID(),
		Date:      bk.Date().Time(),
		UserID:    bk.UserID(),
		UserName:  bk.UserName(),
		Category:  string(bk.Category()),
		Reason:    bk.Reason(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
	if end := bk.EndDate(); end != nil {
		t := end.Time()
		model.EndDate = &t
	}
	return model
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	var endDate *calendar.Date
	if m.EndDate != nil {
		d := calendar.FromTime(*m.EndDate)
		endDate = &d
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		calendar.FromTime(m.Date),
		endDate,
		m.UserID,
		m.UserName,
		bookingDomain.Category(m.Category),
		m.Reason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
