package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCalendar(t *testing.T, instant time.Time) *Calendar {
	t.Helper()
	cal, err := Load(DefaultTimezone)
	require.NoError(t, err)
	return cal.WithClock(func() time.Time { return instant })
}

func TestCalendar_Today(t *testing.T) {
	// 17:30 UTC on Jan 1st is 00:30 on Jan 2nd in Bangkok.
	cal := fixedCalendar(t, time.Date(2025, 1, 1, 17, 30, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-02", cal.Today().String())
}

func TestCalendar_IsWithinBookingWindow(t *testing.T) {
	cal := fixedCalendar(t, time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC))

	tests := []struct {
		date string
		want bool
	}{
		{"2025-06-14", false},
		{"2025-06-15", true},
		{"2025-12-31", true},
		{"2026-12-31", true},
		{"2027-01-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsWithinBookingWindow(MustParse(tt.date)))
		})
	}
	assert.Equal(t, "2026-12-31", cal.MaxBookingDate().String())
}

func TestCalendar_WindowRecomputedPerCall(t *testing.T) {
	now := time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)
	cal := fixedCalendar(t, now).WithClock(func() time.Time { return now })

	assert.False(t, cal.IsWithinBookingWindow(MustParse("2027-06-01")))
	now = now.Add(24 * time.Hour)
	assert.True(t, cal.IsWithinBookingWindow(MustParse("2027-06-01")))
	assert.False(t, cal.IsWithinBookingWindow(MustParse("2025-12-31")))
}

func TestCalendar_IsPast(t *testing.T) {
	cal := fixedCalendar(t, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC))
	assert.True(t, cal.IsPast(MustParse("2025-03-09")))
	assert.False(t, cal.IsPast(MustParse("2025-03-10")))
	assert.False(t, cal.IsPast(MustParse("2025-03-11")))
}

func TestLoad_InvalidTimezone(t *testing.T) {
	_, err := Load("Mars/Olympus")
	assert.Error(t, err)
}
