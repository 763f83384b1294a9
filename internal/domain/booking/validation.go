package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leavedesk/service-booking/internal/calendar"
)

// DayCapacity is the maximum number of bookings that may cover one date.
const DayCapacity = 2

// maxConcurrentReads bounds the capacity fan-out against the repository.
const maxConcurrentReads = 8

// Code identifies which rule rejected a booking.
type Code string

const (
	CodeMaxSpanExceeded      Code = "MAX_SPAN_EXCEEDED"
	CodeDateAtCapacity       Code = "DATE_AT_CAPACITY"
	CodeMonthlyLimitExceeded Code = "MONTHLY_LIMIT_EXCEEDED"
	CodeEditWindowExpired    Code = "EDIT_WINDOW_EXPIRED"
	CodeOutsideBookingWindow Code = "OUTSIDE_BOOKING_WINDOW"
	CodeVerificationFailed   Code = "VERIFICATION_FAILED"
	CodeInvalidCategory      Code = "INVALID_CATEGORY"
)

// ValidationResult is the outcome of a rule check.
type ValidationResult struct {
	Valid bool           `json:"valid"`
	Code  Code           `json:"code,omitempty"`
	Error string         `json:"error,omitempty"`
	Date  *calendar.Date `json:"date,omitempty"`

	cause error
}

// Cause returns the repository error behind a VERIFICATION_FAILED result.
func (r ValidationResult) Cause() error { return r.cause }

// Err returns nil for a valid result and a *RuleViolationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &RuleViolationError{Result: r}
}

func accepted() ValidationResult { return ValidationResult{Valid: true} }

func rejected(code Code, msg string) ValidationResult {
	return ValidationResult{Valid: false, Code: code, Error: msg}
}

func verificationFailed(cause error) ValidationResult {
	r := rejected(CodeVerificationFailed, "could not verify booking availability, please try again")
	r.cause = cause
	return r
}

// RuleViolationError wraps a failed ValidationResult so it can travel as an error.
type RuleViolationError struct {
	Result ValidationResult
}

func (e *RuleViolationError) Error() string { return e.Result.Error }

// Unwrap exposes the repository cause of a verification failure.
func (e *RuleViolationError) Unwrap() error { return e.Result.cause }

// Code returns the machine-readable rule code.
func (e *RuleViolationError) Code() string { return string(e.Result.Code) }

// Details returns extra fields rendered alongside the error.
func (e *RuleViolationError) Details() interface{} {
	if e.Result.Date == nil {
		return nil
	}
	return map[string]string{"date": e.Result.Date.String()}
}

// Validator evaluates the booking rules against the current booking set.
// It holds no state besides its collaborators and performs no writes.
type Validator struct {
	bookings BookingReader
	calendar *calendar.Calendar
}

// NewValidator creates a Validator reading bookings from reader.
func NewValidator(reader BookingReader, cal *calendar.Calendar) *Validator {
	return &Validator{bookings: reader, calendar: cal}
}

// ValidateBooking runs the max-span, capacity and monthly-limit rules in
// that order and returns the first failure. excludeID (uuid.Nil for none)
// removes a booking from consideration so an update does not collide with
// itself. A zero end means a single-day booking.
func (v *Validator) ValidateBooking(
	ctx context.Context,
	userID string,
	start, end calendar.Date,
	category Category,
	excludeID uuid.UUID,
) ValidationResult {
	if end.IsZero() {
		end = start
	}

	if r := v.ValidateSpan(start, end, category); !r.Valid {
		return r
	}
	if r := v.checkCapacity(ctx, calendar.DatesInRange(start, end), excludeID); !r.Valid {
		return r
	}
	return v.checkMonthlyLimit(ctx, userID, start, excludeID)
}

// ValidateCanEdit rejects bookings whose start date is already in the past.
func (v *Validator) ValidateCanEdit(bookingDate calendar.Date) ValidationResult {
	if v.calendar.IsPast(bookingDate) {
		return rejected(CodeEditWindowExpired, "cannot edit a booking whose date has already passed")
	}
	return accepted()
}

// ValidateWindow rejects ranges that start before today or end after the
// last bookable date.
func (v *Validator) ValidateWindow(start, end calendar.Date) ValidationResult {
	if end.IsZero() {
		end = start
	}
	for _, d := range []calendar.Date{start, end} {
		if !v.calendar.IsWithinBookingWindow(d) {
			r := rejected(CodeOutsideBookingWindow, fmt.Sprintf(
				"date %s is outside the booking window (%s to %s)",
				d, v.calendar.Today(), v.calendar.MaxBookingDate(),
			))
			r.Date = &d
			return r
		}
	}
	return accepted()
}

// ValidateSpan rejects an unknown category or a range longer than the
// category allows. It needs no reads, so callers can run it before taking
// any per-date locks.
func (v *Validator) ValidateSpan(start, end calendar.Date, category Category) ValidationResult {
	if end.IsZero() {
		end = start
	}
	if !category.IsValid() {
		return rejected(CodeInvalidCategory, fmt.Sprintf("unknown leave category %q", category))
	}
	return checkMaxSpan(start, end, category)
}

func checkMaxSpan(start, end calendar.Date, category Category) ValidationResult {
	days := calendar.DaysCount(start, end)
	limit := category.MaxDays()
	if days > limit {
		return rejected(CodeMaxSpanExceeded, fmt.Sprintf(
			"%s leave allows at most %d days (requested %d days)",
			category.Label(), limit, days,
		))
	}
	return accepted()
}

// checkCapacity looks up every date concurrently, then reports the earliest
// date that is already full.
func (v *Validator) checkCapacity(ctx context.Context, dates []calendar.Date, excludeID uuid.UUID) ValidationResult {
	counts := make([]int, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, d := range dates {
		g.Go(func() error {
			bookings, err := v.bookings.FindByDate(gctx, d)
			if err != nil {
				return fmt.Errorf("failed to load bookings on %s: %w", d, err)
			}
			counts[i] = countCovering(bookings, d, excludeID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return verificationFailed(err)
	}

	for i, d := range dates {
		if counts[i] >= DayCapacity {
			r := rejected(CodeDateAtCapacity, fmt.Sprintf(
				"date %s is already fully booked (%d of %d slots taken)",
				d, counts[i], DayCapacity,
			))
			r.Date = &d
			return r
		}
	}
	return accepted()
}

func (v *Validator) checkMonthlyLimit(ctx context.Context, userID string, start calendar.Date, excludeID uuid.UUID) ValidationResult {
	year, month := start.Year(), start.Month()
	bookings, err := v.bookings.FindByUserAndMonth(ctx, userID, year, month)
	if err != nil {
		return verificationFailed(fmt.Errorf("failed to load bookings of %s in %d-%02d: %w", userID, year, month, err))
	}

	for _, b := range bookings {
		if b.ID() == excludeID || !b.StartsIn(year, month) || !b.IsOwnedBy(userID) {
			continue
		}
		return rejected(CodeMonthlyLimitExceeded, fmt.Sprintf(
			"you already have a leave booking starting in %d-%02d (only one booking per month is allowed)",
			year, month,
		))
	}
	return accepted()
}

// countCovering rechecks coverage because range queries on the storage
// side may return neighbours.
func countCovering(bookings []*Booking, d calendar.Date, excludeID uuid.UUID) int {
	n := 0
	for _, b := range bookings {
		if b.ID() == excludeID || !b.Covers(d) {
			continue
		}
		n++
	}
	return n
}
