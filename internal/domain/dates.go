package domain

import (
	"strings"
	"time"
)

const (
	// CalendarDateLayout is the stored and accepted form of a calendar date.
	CalendarDateLayout = "2006-01-02"
	// DisplayDateLayout renders dates as weekday, month, day, year ("Mon Jan 01 2024").
	DisplayDateLayout = "Mon Jan 02 2006"
)

// ParseCalendarDate parses a YYYY-MM-DD date, or an RFC 3339 timestamp truncated to its
// date, into UTC midnight.
func ParseCalendarDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(CalendarDateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return CalendarDate(t), nil
}

// CalendarDate drops the clock part of t, keeping the date as seen in t's location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatCalendarDate renders t as YYYY-MM-DD.
func FormatCalendarDate(t time.Time) string {
	return t.Format(CalendarDateLayout)
}

// FormatDisplayDate renders t in the human-readable log form.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
