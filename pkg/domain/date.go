package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day layout.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component, encoded as YYYY-MM-DD.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate accepts YYYY-MM-DD as well as the slash separated form spreadsheets
// tend to produce (2024/3/7).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006/1/2", "2006-1-2", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// Time returns midnight UTC of the day. The zero time is returned for malformed dates.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// In reports whether the day falls in the given year and month.
func (d Date) In(year int, month time.Month) bool {
	t := d.Time()
	return !t.IsZero() && t.Year() == year && t.Month() == month
}

func (d Date) String() string { return string(d) }
