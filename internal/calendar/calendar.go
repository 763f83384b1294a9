package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the civil timezone the organisation works in.
const DefaultTimezone = "Asia/Bangkok"

// Calendar resolves "today" in a fixed civil timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Calendar for loc backed by the system clock.
func New(loc *time.Location) *Calendar {
	return &Calendar{loc: loc, now: time.Now}
}

// Load creates a Calendar from an IANA timezone name.
func Load(tz string) (*Calendar, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return New(loc), nil
}

// WithClock returns a copy of c that reads the current instant from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location returns the civil timezone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Today is the current civil date. It is recomputed on every call.
func (c *Calendar) Today() Date {
	return DateOf(c.now(), c.loc)
}

// DateOf converts an instant to a civil date in the calendar's timezone.
func (c *Calendar) DateOf(t time.Time) Date {
	return DateOf(t, c.loc)
}

// MaxBookingDate is December 31st of next year.
func (c *Calendar) MaxBookingDate() Date {
	return NewDate(c.Today().Year()+1, time.December, 31)
}

// IsWithinBookingWindow reports whether d lies between today and the end of
// next calendar year, inclusive.
func (c *Calendar) IsWithinBookingWindow(d Date) bool {
	today := c.Today()
	return InRange(d, today, NewDate(today.Year()+1, time.December, 31))
}

// IsPast reports whether d is strictly before today.
func (c *Calendar) IsPast(d Date) bool {
	return d.Before(c.Today())
}
