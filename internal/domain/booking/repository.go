package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leavedesk/service-booking/internal/calendar"
)

// BookingReader is the read surface the Validator depends on.
type BookingReader interface {
	// FindByDate returns every booking whose inclusive range contains date.
	FindByDate(ctx context.Context, date calendar.Date) ([]*Booking, error)

	// FindByUserAndMonth returns the user's bookings starting in the given month (1-12).
	FindByUserAndMonth(ctx context.Context, userID string, year int, month time.Month) ([]*Booking, error)
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	BookingReader

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindInRange returns bookings overlapping [start, end], ordered by date.
	FindInRange(ctx context.Context, start, end calendar.Date) ([]*Booking, error)

	// FindByUserID returns all bookings of a user, ordered by date.
	FindByUserID(ctx context.Context, userID string) ([]*Booking, error)

	// ListAll retrieves all bookings ordered by date with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByCategory returns booking counts grouped by category (admin).
	CountByCategory(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking.
	Delete(ctx context.Context, id uuid.UUID) error
}
