package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/calendar"
	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/internal/domain/member"
	"github.com/leavedesk/service-booking/internal/events"
	"github.com/leavedesk/service-booking/pkg/domain"
	"github.com/leavedesk/service-booking/pkg/kafka"
)

// maxAvailabilityDays bounds a single availability query.
const maxAvailabilityDays = 62

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// DateLock serialises writes touching the same civil dates.
type DateLock interface {
	Acquire(ctx context.Context, dates []calendar.Date) (release func(), err error)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	Date     string `json:"date" binding:"required"`
	EndDate  string `json:"end_date"`
	Category string `json:"category" binding:"required"`
	Reason   string `json:"reason"`
}

// UpdateBookingRequest holds the fields to change. Nil fields keep their
// current value; an empty EndDate turns the booking into a single day.
type UpdateBookingRequest struct {
	Date     *string `json:"date"`
	EndDate  *string `json:"end_date"`
	Category *string `json:"category"`
	Reason   *string `json:"reason"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID      `json:"id"`
	Date          calendar.Date  `json:"date"`
	EndDate       *calendar.Date `json:"end_date,omitempty"`
	Days          int            `json:"days"`
	UserID        string         `json:"user_id"`
	UserName      string         `json:"user_name"`
	Category      string         `json:"category"`
	CategoryLabel string         `json:"category_label"`
	Reason        string         `json:"reason,omitempty"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DayAvailability reports how many slots are left on one date.
type DayAvailability struct {
	Date      calendar.Date `json:"date"`
	Booked    int           `json:"booked"`
	Remaining int           `json:"remaining"`
	Capacity  int           `json:"capacity"`
}

// BookingStatsDTO holds aggregate booking counts (admin).
type BookingStatsDTO struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
}

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID      string
	DisplayName string
	IsAdmin     bool
}

// candidate is a parsed booking request.
type candidate struct {
	start    calendar.Date
	endDate  *calendar.Date
	category bookingDomain.Category
	reason   string
}

func (c candidate) end() calendar.Date {
	if c.endDate == nil {
		return c.start
	}
	return *c.endDate
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	members   member.MemberRepository
	validator *bookingDomain.Validator
	calendar  *calendar.Calendar
	lock      DateLock
	audit     *AuditLogger
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	members member.MemberRepository,
	validator *bookingDomain.Validator,
	cal *calendar.Calendar,
	lock DateLock,
	audit *AuditLogger,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		members:   members,
		validator: validator,
		calendar:  cal,
		lock:      lock,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking validates and stores a new booking for the actor.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingDTO, error) {
	c, err := parseCandidate(req.Date, req.EndDate, req.Category, req.Reason)
	if err != nil {
		return nil, err
	}
	if r := s.validator.ValidateWindow(c.start, c.end()); !r.Valid {
		return nil, r.Err()
	}
	// The lock covers every requested date, so bound the range first.
	if r := s.validator.ValidateSpan(c.start, c.end(), c.category); !r.Valid {
		return nil, r.Err()
	}

	release, err := s.lock.Acquire(ctx, calendar.DatesInRange(c.start, c.end()))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.checkRules(ctx, actor.UserID, c, uuid.Nil); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(actor.UserID, s.resolveUserName(ctx, actor), c.start, c.endDate, c.category, c.reason)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.audit.LogCreate(ctx, bk)
	s.publishBookingCreated(ctx, bk)

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID()),
		zap.Stringer("date", bk.Date()),
		zap.Int("days", bk.Span()),
	)
	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking reschedules an existing booking. Only the owner or an admin
// may update, and only while the booking has not started.
func (s *BookingService) UpdateBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !bk.IsOwnedBy(actor.UserID) {
		return nil, domain.NewForbiddenError("you can only edit your own bookings")
	}
	if r := s.validator.ValidateCanEdit(bk.Date()); !r.Valid {
		return nil, r.Err()
	}

	c, err := mergeUpdate(bk, req)
	if err != nil {
		return nil, err
	}
	if r := s.validator.ValidateWindow(c.start, c.end()); !r.Valid {
		return nil, r.Err()
	}
	// The lock covers every requested date, so bound the range first.
	if r := s.validator.ValidateSpan(c.start, c.end(), c.category); !r.Valid {
		return nil, r.Err()
	}

	release, err := s.lock.Acquire(ctx, calendar.DatesInRange(c.start, c.end()))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.checkRules(ctx, bk.UserID(), c, bk.ID()); err != nil {
		return nil, err
	}

	before := bk.Snapshot()
	if err := bk.Reschedule(c.start, c.endDate, c.category, c.reason); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.audit.LogUpdate(ctx, before, bk)
	s.publishBookingUpdated(ctx, before, bk, actor.UserID)

	s.logger.Info("booking updated",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID()),
		zap.String("updated_by", actor.UserID),
	)
	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking removes a booking owned by the actor (or any booking for an admin).
func (s *BookingService) DeleteBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && !bk.IsOwnedBy(actor.UserID) {
		return domain.NewForbiddenError("you can only delete your own bookings")
	}

	if err := s.repo.Delete(ctx, bk.ID()); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.audit.LogDelete(ctx, bk)
	s.publishBookingDeleted(ctx, bk, actor.UserID)

	s.logger.Info("booking deleted",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", bk.UserID()),
		zap.String("deleted_by", actor.UserID),
	)
	return nil
}

// ValidateBooking runs the booking-window check and the rule chain without
// writing anything.
func (s *BookingService) ValidateBooking(ctx context.Context, userID string, req CreateBookingRequest, excludeID uuid.UUID) (bookingDomain.ValidationResult, error) {
	c, err := parseCandidate(req.Date, req.EndDate, req.Category, req.Reason)
	if err != nil {
		return bookingDomain.ValidationResult{}, err
	}
	if r := s.validator.ValidateWindow(c.start, c.end()); !r.Valid {
		return r, nil
	}
	r := s.validator.ValidateBooking(ctx, userID, c.start, c.end(), c.category, excludeID)
	s.logVerificationFailure(r, userID)
	return r, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListByMonth returns bookings overlapping the given month (1-12).
func (s *BookingService) ListByMonth(ctx context.Context, year, month int) ([]BookingDTO, error) {
	if month < 1 || month > 12 {
		return nil, domain.NewValidationError("month must be between 1 and 12")
	}
	first, last := calendar.MonthBounds(year, time.Month(month))
	bookings, err := s.repo.FindInRange(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by month: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListByDate returns bookings covering a date.
func (s *BookingService) ListByDate(ctx context.Context, date string) ([]BookingDTO, error) {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	bookings, err := s.repo.FindByDate(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by date: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListMyBookings returns all bookings of a user.
func (s *BookingService) ListMyBookings(ctx context.Context, userID string) ([]BookingDTO, error) {
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return toBookingDTOs(bookings), nil
}

// ListAllBookings returns all bookings with pagination (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toBookingDTOs(bookings), total, nil
}

// GetAvailability reports per-day capacity for every date in [start, end].
func (s *BookingService) GetAvailability(ctx context.Context, start, end string) ([]DayAvailability, error) {
	from, err := calendar.ParseDate(start)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	to, err := calendar.ParseDate(end)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("end must not be before start")
	}
	if calendar.DaysCount(from, to) > maxAvailabilityDays {
		return nil, domain.NewValidationError(fmt.Sprintf("range must not exceed %d days", maxAvailabilityDays))
	}

	bookings, err := s.repo.FindInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for availability: %w", err)
	}

	dates := calendar.DatesInRange(from, to)
	days := make([]DayAvailability, len(dates))
	for i, d := range dates {
		booked := 0
		for _, bk := range bookings {
			if bk.Covers(d) {
				booked++
			}
		}
		days[i] = DayAvailability{
			Date:      d,
			Booked:    booked,
			Remaining: max(bookingDomain.DayCapacity-booked, 0),
			Capacity:  bookingDomain.DayCapacity,
		}
	}
	return days, nil
}

// GetBookingStats returns booking counts per category (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	stats := &BookingStatsDTO{ByCategory: make(map[string]int64)}
	for _, c := range bookingDomain.Categories() {
		stats.ByCategory[string(c)] = 0
	}
	for category, n := range counts {
		stats.ByCategory[category] = n
		stats.Total += n
	}
	return stats, nil
}

// --- helpers ---

func (s *BookingService) checkRules(ctx context.Context, userID string, c candidate, excludeID uuid.UUID) error {
	r := s.validator.ValidateBooking(ctx, userID, c.start, c.end(), c.category, excludeID)
	s.logVerificationFailure(r, userID)
	return r.Err()
}

func (s *BookingService) logVerificationFailure(r bookingDomain.ValidationResult, userID string) {
	if r.Code == bookingDomain.CodeVerificationFailed {
		s.logger.Error("could not verify booking rules",
			zap.String("user_id", userID),
			zap.Error(r.Cause()),
		)
	}
}

// resolveUserName prefers the registered full name over the LINE display name.
func (s *BookingService) resolveUserName(ctx context.Context, actor Actor) string {
	m, err := s.members.FindByLineUserID(ctx, actor.UserID)
	if err == nil {
		return m.FullName()
	}
	if !domain.IsNotFound(err) {
		s.logger.Warn("failed to load member profile, using display name",
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
	}
	if actor.DisplayName != "" {
		return actor.DisplayName
	}
	return actor.UserID
}

func parseCandidate(date, endDate, category, reason string) (candidate, error) {
	start, err := calendar.ParseDate(date)
	if err != nil {
		return candidate{}, domain.NewValidationError(err.Error())
	}
	c := candidate{start: start, reason: reason}

	if endDate != "" {
		end, err := calendar.ParseDate(endDate)
		if err != nil {
			return candidate{}, domain.NewValidationError(err.Error())
		}
		if end.Before(start) {
			return candidate{}, domain.NewValidationError("end date must not be before start date")
		}
		if !end.Equal(start) {
			c.endDate = &end
		}
	}

	c.category, err = bookingDomain.ParseCategory(category)
	if err != nil {
		return candidate{}, domain.NewValidationError(err.Error())
	}
	return c, nil
}

func mergeUpdate(bk *bookingDomain.Booking, req UpdateBookingRequest) (candidate, error) {
	date := bk.Date().String()
	if req.Date != nil {
		date = *req.Date
	}
	endDate := ""
	if bk.EndDate() != nil {
		endDate = bk.EndDate().String()
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	category := string(bk.Category())
	if req.Category != nil {
		category = *req.Category
	}
	reason := bk.Reason()
	if req.Reason != nil {
		reason = *req.Reason
	}
	return parseCandidate(date, endDate, category, reason)
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		Date:          bk.Date(),
		EndDate:       bk.EndDate(),
		Days:          bk.Span(),
		UserID:        bk.UserID(),
		UserName:      bk.UserName(),
		Category:      string(bk.Category()),
		CategoryLabel: bk.Category().Label(),
		Reason:        bk.Reason(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

// --- Event Publishing ---

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		UserName:   bk.UserName(),
		Date:       bk.Date().String(),
		EndDate:    bk.End().String(),
		Days:       bk.Span(),
		Category:   string(bk.Category()),
		Reason:     bk.Reason(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingUpdated(ctx context.Context, before bookingDomain.Snapshot, bk *bookingDomain.Booking, updatedBy string) {
	prevEnd := before.Date
	if before.EndDate != nil {
		prevEnd = *before.EndDate
	}
	evt := events.BookingUpdatedEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		UserName:        bk.UserName(),
		Date:            bk.Date().String(),
		EndDate:         bk.End().String(),
		Days:            bk.Span(),
		Category:        string(bk.Category()),
		PreviousDate:    before.Date,
		PreviousEndDate: prevEnd,
		UpdatedBy:       updatedBy,
		OccurredAt:      time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingUpdated, bk.ID().String(), evt)
}

func (s *BookingService) publishBookingDeleted(ctx context.Context, bk *bookingDomain.Booking, deletedBy string) {
	evt := events.BookingDeletedEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		UserName:   bk.UserName(),
		Date:       bk.Date().String(),
		EndDate:    bk.End().String(),
		Category:   string(bk.Category()),
		DeletedBy:  deletedBy,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingDeleted, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = subject

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
