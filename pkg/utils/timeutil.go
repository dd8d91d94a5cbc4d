package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in CSV files and reports.
const DateLayout = "2006-01-02"

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
	"01/02/2006",
}

// ParseTimestamp parses an ISO-8601 style timestamp. Values without an
// offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Day returns the calendar date of t, read in t's own location, as
// midnight UTC. It is the grouping and join key for daily data.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsTradingDay reports whether t falls on a weekday. Exchange holidays are
// not modelled; the price series itself is the trading calendar.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddTradingDays moves t forward by n weekdays.
func AddTradingDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if IsTradingDay(t) {
			n--
		}
	}
	return t
}

// TradingDaysBetween counts weekdays in [start, end).
func TradingDaysBetween(start, end time.Time) int {
	count := 0
	for cur := Day(start); cur.Before(Day(end)); cur = cur.AddDate(0, 0, 1) {
		if IsTradingDay(cur) {
			count++
		}
	}
	return count
}
