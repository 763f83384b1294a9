package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leavedesk/service-booking/internal/calendar"
	"github.com/leavedesk/service-booking/pkg/domain"
)

const maxReasonLength = 500

// Booking is the aggregate root for a leave booking.
type Booking struct {
	id       uuid.UUID
	date     calendar.Date
	endDate  *calendar.Date
	userID   string
	userName string
	category Category
	reason   string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate. The rule chain in Validator
// is expected to have run already; this only guards structural invariants.
func NewBooking(
	userID string,
	userName string,
	date calendar.Date,
	endDate *calendar.Date,
	category Category,
	reason string,
) (*Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError("user ID is required")
	}
	b := &Booking{
		id:       uuid.New(),
		userID:   userID,
		userName: userName,
		version:  1,
	}
	if err := b.apply(date, endDate, category, reason); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.createdAt = now
	b.updatedAt = now
	return b, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	date calendar.Date,
	endDate *calendar.Date,
	userID string,
	userName string,
	category Category,
	reason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		date:      date,
		endDate:   endDate,
		userID:    userID,
		userName:  userName,
		category:  category,
		reason:    reason,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Date returns the first day of leave.
func (b *Booking) Date() calendar.Date { return b.date }

// EndDate returns the stored last day of leave, or nil for a single-day booking.
func (b *Booking) EndDate() *calendar.Date { return b.endDate }

// End returns the effective last day of leave.
func (b *Booking) End() calendar.Date {
	if b.endDate == nil {
		return b.date
	}
	return *b.endDate
}

// UserID returns the owner's user ID.
func (b *Booking) UserID() string { return b.userID }

// UserName returns the owner's display name at booking time.
func (b *Booking) UserName() string { return b.userName }

// Category returns the leave category.
func (b *Booking) Category() Category { return b.category }

// Reason returns the optional free-text reason.
func (b *Booking) Reason() string { return b.reason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Span returns the inclusive number of days covered.
func (b *Booking) Span() int { return calendar.DaysCount(b.date, b.End()) }

// Dates lists every covered day in ascending order.
func (b *Booking) Dates() []calendar.Date { return calendar.DatesInRange(b.date, b.End()) }

// Covers reports whether d falls within the booking's inclusive range.
func (b *Booking) Covers(d calendar.Date) bool {
	return calendar.InRange(d, b.date, b.End())
}

// Overlaps reports whether the booking shares at least one day with [start, end].
func (b *Booking) Overlaps(start, end calendar.Date) bool {
	return !b.date.After(end) && !b.End().Before(start)
}

// StartsIn reports whether the booking's first day falls in the given month.
func (b *Booking) StartsIn(year int, month time.Month) bool {
	return b.date.Year() == year && b.date.Month() == month
}

// IsOwnedBy reports whether userID owns the booking.
func (b *Booking) IsOwnedBy(userID string) bool { return b.userID == userID }

// Reschedule replaces the booking's dates, category and reason.
func (b *Booking) Reschedule(date calendar.Date, endDate *calendar.Date, category Category, reason string) error {
	if err := b.apply(date, endDate, category, reason); err != nil {
		return err
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Snapshot captures the audited fields of the booking.
func (b *Booking) Snapshot() Snapshot {
	s := Snapshot{
		Date:      b.date.String(),
		Category:  b.category,
		Reason:    b.reason,
		UpdatedAt: b.updatedAt,
	}
	if b.endDate != nil {
		end := b.endDate.String()
		s.EndDate = &end
	}
	return s
}

func (b *Booking) apply(date calendar.Date, endDate *calendar.Date, category Category, reason string) error {
	if date.IsZero() {
		return domain.NewValidationError("date is required")
	}
	if !category.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid category: %s", category))
	}
	if endDate != nil && endDate.IsZero() {
		endDate = nil
	}
	if endDate != nil && endDate.Before(date) {
		return domain.NewValidationError("end date must not be before start date")
	}
	end := date
	if endDate != nil {
		end = *endDate
	}
	if span := calendar.DaysCount(date, end); span > category.MaxDays() {
		return domain.NewValidationError(fmt.Sprintf("%s leave allows at most %d days", category.Label(), category.MaxDays()))
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > maxReasonLength {
		return domain.NewValidationError(fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}

	b.date = date
	b.endDate = endDate
	b.category = category
	b.reason = reason
	return nil
}

// Snapshot is the audited view of a booking stored in history entries.
// Its JSON keys match the booking fields stored in booking_history.
type Snapshot struct {
	Date      string    `json:"date"`
	EndDate   *string   `json:"endDate,omitempty"`
	Category  Category  `json:"category"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
