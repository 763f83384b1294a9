package history

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavedesk/service-booking/internal/calendar"
	"github.com/leavedesk/service-booking/internal/domain/booking"
)

func sampleBooking(t *testing.T) *booking.Booking {
	t.Helper()
	end := calendar.MustParse("2025-02-12")
	b, err := booking.NewBooking("U1", "Somchai", calendar.MustParse("2025-02-10"), &end, booking.CategoryDomestic, "trip")
	require.NoError(t, err)
	return b
}

func TestNewCreateEntry(t *testing.T) {
	b := sampleBooking(t)

	e := NewCreateEntry(b)

	assert.Equal(t, ActionCreate, e.Action())
	assert.Equal(t, b.ID(), e.BookingID())
	assert.Equal(t, "U1", e.UserID())
	assert.Equal(t, "Somchai", e.UserName())
	require.NotNil(t, e.BookingData())
	assert.Equal(t, "2025-02-10", e.BookingData().Date)
	assert.Nil(t, e.OldData())
	assert.Nil(t, e.NewData())
}

func TestNewUpdateEntry(t *testing.T) {
	b := sampleBooking(t)
	before := b.Snapshot()
	require.NoError(t, b.Reschedule(calendar.MustParse("2025-02-20"), nil, booking.CategoryInternational, ""))

	e := NewUpdateEntry(before, b)

	assert.Equal(t, ActionUpdate, e.Action())
	require.NotNil(t, e.OldData())
	require.NotNil(t, e.NewData())
	assert.Equal(t, "2025-02-10", e.OldData().Date)
	assert.Equal(t, "2025-02-20", e.NewData().Date)
	assert.Nil(t, e.NewData().EndDate)
	assert.Equal(t, booking.CategoryInternational, e.NewData().Category)
}

func TestNewDeleteEntry(t *testing.T) {
	b := sampleBooking(t)

	e := NewDeleteEntry(b)

	assert.Equal(t, ActionDelete, e.Action())
	require.NotNil(t, e.BookingData())
	require.NotNil(t, e.BookingData().EndDate)
	assert.Equal(t, "2025-02-12", *e.BookingData().EndDate)
}

func TestReconstruct_InvalidAction(t *testing.T) {
	_, err := Reconstruct(uuid.New(), Action("purge"), uuid.New(), "U1", "x", time.Now(), nil, nil, nil)
	assert.Error(t, err)
}
