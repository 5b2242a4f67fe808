package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATES - Calendar dates are UTC midnight instants
// =============================================================================

const DateLayout = "2006-01-02"

// Date returns midnight UTC on the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseInstant accepts either RFC3339 or a bare YYYY-MM-DD date.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return ParseDate(s)
}

// AddYears is plain calendar addition: same month and day, year+n.
// Feb 29 plus one year normalizes to Mar 1.
func AddYears(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) }

func AddMonths(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }

// MillisBetween returns to-from in whole milliseconds, the resolution
// billing instants are compared at.
func MillisBetween(from, to time.Time) int64 { return to.UnixMilli() - from.UnixMilli() }

// CeilDiv divides two positive integers rounding up.
func CeilDiv(n, d int64) int64 {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}
