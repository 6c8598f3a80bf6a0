package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used as the
// DailyState key and in document file names.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in DateLayout using the local zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// FormatDate formats t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current local calendar date.
func Today() string {
	return FormatDate(time.Now())
}

// ShiftDate returns the date that is days away from date.
func ShiftDate(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, days)), nil
}

// ISOWeekID returns the ISO week identifier of t, e.g. "2026-W07".
func ISOWeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// IsISOWeekEnd reports whether t is the last day (Sunday) of its ISO week.
func IsISOWeekEnd(t time.Time) bool {
	return t.Weekday() == time.Sunday
}

// DateFromTimestamp extracts the calendar date from an RFC 3339
// timestamp (in the timestamp's own offset) or a bare date.
// It returns "" when s holds neither.
func DateFromTimestamp(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FormatDate(t)
	}
	if len(s) >= len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	return ""
}
