package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents carries every booking lifecycle event.
const TopicBookingEvents = "leave.booking.events"

// Event types published on TopicBookingEvents.
const (
	BookingCreated = "leave.booking.created"
	BookingUpdated = "leave.booking.updated"
	BookingDeleted = "leave.booking.deleted"
)

// EventSource is the CloudEvent source of events emitted by this service.
const EventSource = "service-booking"

// BookingCreatedEvent is emitted after a booking is stored.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Date       string    `json:"date"`
	EndDate    string    `json:"end_date"`
	Days       int       `json:"days"`
	Category   string    `json:"category"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingUpdatedEvent is emitted after a booking is rescheduled.
type BookingUpdatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	Date            string    `json:"date"`
	EndDate         string    `json:"end_date"`
	Days            int       `json:"days"`
	Category        string    `json:"category"`
	PreviousDate    string    `json:"previous_date"`
	PreviousEndDate string    `json:"previous_end_date"`
	UpdatedBy       string    `json:"updated_by"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingDeletedEvent is emitted after a booking is removed.
type BookingDeletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Date       string    `json:"date"`
	EndDate    string    `json:"end_date"`
	Category   string    `json:"category"`
	DeletedBy  string    `json:"deleted_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
