package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/leavedesk/service-booking/internal/calendar"
)

// fakeReader is an in-memory BookingReader over a fixture booking set.
type fakeReader struct {
	mu        sync.Mutex
	bookings  []*Booking
	dateErr   error
	monthErr  error
	dateCalls int
}

func (f *fakeReader) FindByDate(_ context.Context, date calendar.Date) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dateCalls++
	if f.dateErr != nil {
		return nil, f.dateErr
	}
	var out []*Booking
	for _, b := range f.bookings {
		if b.Covers(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeReader) FindByUserAndMonth(_ context.Context, userID string, year int, month time.Month) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.monthErr != nil {
		return nil, f.monthErr
	}
	var out []*Booking
	for _, b := range f.bookings {
		if b.UserID() == userID && b.StartsIn(year, month) {
			out = append(out, b)
		}
	}
	return out, nil
}

var errStorage = errors.New("connection reset by peer")

func d(s string) calendar.Date { return calendar.MustParse(s) }

func dp(s string) *calendar.Date {
	v := calendar.MustParse(s)
	return &v
}

func existing(userID, start, end string, category Category) *Booking {
	var endDate *calendar.Date
	if end != "" {
		endDate = dp(end)
	}
	now := time.Now().UTC()
	return ReconstructBooking(uuid.New(), d(start), endDate, userID, userID, category, "", 1, now, now)
}

// testCalendar returns a Bangkok calendar frozen at the given civil date, 09:00 local.
func testCalendar(t *testing.T, today string) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.Load(calendar.DefaultTimezone)
	require.NoError(t, err)
	day := d(today)
	instant := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, cal.Location())
	return cal.WithClock(func() time.Time { return instant })
}
