// Package calendar does all civil-date arithmetic for the booking engine.
// Every rule compares Dates produced here, never instants, so no rule can
// drift from another by a timezone offset.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format of a Date.
const Layout = "2006-01-02"

// Date is a civil calendar date. The zero value is not a valid date.
type Date struct {
	t time.Time // always midnight UTC
}

// NewDate builds a Date, normalising overflow the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// MustParse is ParseDate for constants and tests; it panics on bad input.
func MustParse(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the civil date of instant t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return NewDate(y, m, d)
}

// FromTime takes the year, month and day of t in t's own location.
// Use it for values read from DATE columns.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) Year() int          { return d.t.Year() }
func (d Date) Month() time.Month  { return d.t.Month() }
func (d Date) Day() int           { return d.t.Day() }
func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Time() time.Time    { return d.t }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatesInRange lists every date from start to end inclusive, ascending.
// If end is before start the result is just [start].
func DatesInRange(start, end Date) []Date {
	if end.Before(start) {
		return []Date{start}
	}
	dates := make([]Date, 0, daysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// DaysCount is len(DatesInRange(start, end)).
func DaysCount(start, end Date) int {
	if end.Before(start) {
		return 1
	}
	return daysBetween(start, end) + 1
}

// InRange reports whether d lies within [start, end].
func InRange(d, start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// MonthBounds returns the first and last date of a month (1-12).
func MonthBounds(year int, month time.Month) (Date, Date) {
	first := NewDate(year, month, 1)
	return first, NewDate(year, month+1, 0)
}

func daysBetween(start, end Date) int {
	// Both values are UTC midnights, so the difference is an exact multiple of 24h.
	return int(end.t.Sub(start.t).Hours() / 24)
}
