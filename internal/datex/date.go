// Package datex normalizes calendar dates to the YYYY-MM-DD form used by every
// persisted habit and journal record.
package datex

import (
	"fmt"
	"time"
)

// Layout is the persisted calendar-date format.
const Layout = "2006-01-02"

// Format returns t as a calendar date in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return Format(now.In(loc))
}

// Parse parses a YYYY-MM-DD string as midnight UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Normalize accepts a calendar date or an RFC 3339 timestamp and returns the
// YYYY-MM-DD form. Timestamps keep their own offset so "2024-01-05T23:30:00-05:00"
// stays on the 5th.
func Normalize(s string) (string, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return Format(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Format(t), nil
	}
	return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// Valid reports whether s is already in YYYY-MM-DD form.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// MonthsBack returns the year and month that lie n months before the month of ref.
func MonthsBack(ref time.Time, n int) (int, time.Month) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	t := first.AddDate(0, -n, 0)
	return t.Year(), t.Month()
}
