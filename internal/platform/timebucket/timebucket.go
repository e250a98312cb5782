// Package timebucket maps instants onto local calendar days, weeks and months
// of an explicit timezone. Nothing here reads the process-local zone.
package timebucket

import (
	"fmt"
	"time"
)

// KeyLayout is the layout of day keys produced by DateKey.
const KeyLayout = "2006-01-02"

// DateKey returns the YYYY-MM-DD of t's calendar day in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(zone(loc)).Format(KeyLayout)
}

// ParseDateKey returns local midnight of the day named by key.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, zone(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return DayStart(t, loc), nil
}

// DayStart returns 00:00 local time of t's day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(zone(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// AddDays moves a local midnight by n calendar days. Days are not assumed to
// be 24h long, so this stays on midnight across DST changes.
func AddDays(dayStart time.Time, n int) time.Time {
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+n, 0, 0, 0, 0, dayStart.Location())
}

// WeekStart returns 00:00 local time on the Monday of the week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := DayStart(t, loc)
	return AddDays(day, -MondayIndex(day.Weekday()))
}

// MonthStart returns 00:00 local time on the first day of t's month.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(zone(loc))
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location())
}

// DaysInMonth reports the number of calendar days in t's month in loc.
func DaysInMonth(t time.Time, loc *time.Location) int {
	start := MonthStart(t, loc)
	return time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, start.Location()).Day()
}

// IsWeekend reports whether t falls on Saturday or Sunday in loc.
func IsWeekend(t time.Time, loc *time.Location) bool {
	switch t.In(zone(loc)).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// MondayIndex converts a weekday to a Monday-based index (Monday=0, Sunday=6).
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func zone(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
