// Package model holds the domain types: calendar dates, tasks with their
// derived status, and categories.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ISODate is the wire and storage format for dates
const ISODate = "2006-01-02"

// Date is a calendar date with no time-of-day or timezone. All recurrence
// arithmetic happens on dates; wall clocks only matter when a notification
// fire time is computed.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a date from its parts
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the current date in the given location
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// DateOf extracts the calendar date from a time
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return d.utc().Format(ISODate)
}

// IsZero reports whether the date is the zero value
func (d Date) IsZero() bool {
	return d == Date{}
}

// utc pins the date to UTC midnight so arithmetic never crosses a DST
// boundary
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later (or earlier for negative n)
func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

// DaysUntil returns the signed number of days from d to other
func (d Date) DaysUntil(other Date) int {
	return int(other.utc().Sub(d.utc()) / (24 * time.Hour))
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	return d.utc().Before(other.utc())
}

// After reports whether d is later than other
func (d Date) After(other Date) bool {
	return d.utc().After(other.utc())
}

// At returns the wall-clock instant of this date at the given time in loc
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
