package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leavedesk/service-booking/internal/domain/booking"
)

// Action is the kind of mutation an entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsValid returns true if the action is recognized.
func (a Action) IsValid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// Entry is an immutable audit record of one booking mutation.
type Entry struct {
	id          uuid.UUID
	action      Action
	bookingID   uuid.UUID
	userID      string
	userName    string
	timestamp   time.Time
	oldData     *booking.Snapshot
	newData     *booking.Snapshot
	bookingData *booking.Snapshot
}

// NewCreateEntry records the creation of b.
func NewCreateEntry(b *booking.Booking) *Entry {
	snap := b.Snapshot()
	return newEntry(ActionCreate, b, nil, nil, &snap)
}

// NewUpdateEntry records a change of b from before to its current state.
func NewUpdateEntry(before booking.Snapshot, b *booking.Booking) *Entry {
	after := b.Snapshot()
	return newEntry(ActionUpdate, b, &before, &after, nil)
}

// NewDeleteEntry records the removal of b. Call it with the booking as loaded
// before the delete.
func NewDeleteEntry(b *booking.Booking) *Entry {
	snap := b.Snapshot()
	return newEntry(ActionDelete, b, nil, nil, &snap)
}

func newEntry(action Action, b *booking.Booking, oldData, newData, bookingData *booking.Snapshot) *Entry {
	return &Entry{
		id:          uuid.New(),
		action:      action,
		bookingID:   b.ID(),
		userID:      b.UserID(),
		userName:    b.UserName(),
		timestamp:   time.Now().UTC(),
		oldData:     oldData,
		newData:     newData,
		bookingData: bookingData,
	}
}

// Reconstruct rebuilds an Entry from persistence.
func Reconstruct(
	id uuid.UUID,
	action Action,
	bookingID uuid.UUID,
	userID, userName string,
	timestamp time.Time,
	oldData, newData, bookingData *booking.Snapshot,
) (*Entry, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid history action: %s", action)
	}
	return &Entry{
		id:          id,
		action:      action,
		bookingID:   bookingID,
		userID:      userID,
		userName:    userName,
		timestamp:   timestamp,
		oldData:     oldData,
		newData:     newData,
		bookingData: bookingData,
	}, nil
}

// Getters.
func (e *Entry) ID() uuid.UUID                  { return e.id }
func (e *Entry) Action() Action                 { return e.action }
func (e *Entry) BookingID() uuid.UUID           { return e.bookingID }
func (e *Entry) UserID() string                 { return e.userID }
func (e *Entry) UserName() string               { return e.userName }
func (e *Entry) Timestamp() time.Time           { return e.timestamp }
func (e *Entry) OldData() *booking.Snapshot     { return e.oldData }
func (e *Entry) NewData() *booking.Snapshot     { return e.newData }
func (e *Entry) BookingData() *booking.Snapshot { return e.bookingData }
