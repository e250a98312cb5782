package timebucket_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/platform/timebucket"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestDateKeyCoversWholeLocalDay(t *testing.T) {
	t.Parallel()
	cases := []struct {
		zone string
		day  time.Time
	}{
		// spring-forward day, 23 hours long
		{zone: "America/New_York", day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
		// fall-back day, 25 hours long
		{zone: "America/New_York", day: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
		{zone: "Asia/Tokyo", day: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		loc := mustZone(t, tc.zone)
		start := time.Date(tc.day.Year(), tc.day.Month(), tc.day.Day(), 0, 0, 0, 0, loc)
		next := time.Date(tc.day.Year(), tc.day.Month(), tc.day.Day()+1, 0, 0, 0, 0, loc)
		key := timebucket.DateKey(start, loc)
		assert.Equal(t, tc.day.Format(timebucket.KeyLayout), key, tc.zone)

		for probe := start; probe.Before(next); probe = probe.Add(30 * time.Minute) {
			assert.Equal(t, key, timebucket.DateKey(probe, loc), "%s at %s", tc.zone, probe)
		}
		lastMs := next.Add(-time.Millisecond)
		assert.Equal(t, key, timebucket.DateKey(lastMs, loc))
		assert.NotEqual(t, key, timebucket.DateKey(next, loc))
		assert.NotEqual(t, key, timebucket.DateKey(next.Add(time.Millisecond), loc))
	}
}

func TestDateKeyIgnoresInstantZone(t *testing.T) {
	t.Parallel()
	ny := mustZone(t, "America/New_York")
	// 02:30 UTC on the 16th is still the 15th in New York.
	instant := time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-15", timebucket.DateKey(instant, ny))
	assert.Equal(t, "2026-10-16", timebucket.DateKey(instant, time.UTC))
	assert.Equal(t, "2026-10-16", timebucket.DateKey(instant, nil))
}

func TestWeekStartIsMonday(t *testing.T) {
	t.Parallel()
	tokyo := mustZone(t, "Asia/Tokyo")
	cases := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{name: "thursday", at: time.Date(2026, 10, 15, 18, 0, 0, 0, tokyo), want: time.Date(2026, 10, 12, 0, 0, 0, 0, tokyo)},
		{name: "monday", at: time.Date(2026, 10, 12, 0, 0, 0, 0, tokyo), want: time.Date(2026, 10, 12, 0, 0, 0, 0, tokyo)},
		{name: "sunday", at: time.Date(2026, 10, 18, 23, 59, 0, 0, tokyo), want: time.Date(2026, 10, 12, 0, 0, 0, 0, tokyo)},
	}
	for _, tc := range cases {
		got := timebucket.WeekStart(tc.at, tokyo)
		assert.True(t, tc.want.Equal(got), "%s: want %s got %s", tc.name, tc.want, got)
	}
}

func TestWeekStartAcrossDST(t *testing.T) {
	t.Parallel()
	ny := mustZone(t, "America/New_York")
	// Sunday of the spring-forward weekend; Monday before is still EST.
	at := time.Date(2026, 3, 8, 12, 0, 0, 0, ny)
	got := timebucket.WeekStart(at, ny)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, ny), got)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, time.Monday, got.Weekday())

	next := timebucket.AddDays(got, 7)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 167*time.Hour, next.Sub(got))
}

func TestIsWeekendUsesGivenZone(t *testing.T) {
	t.Parallel()
	ny := mustZone(t, "America/New_York")
	saturdayUTC := time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC)
	assert.True(t, timebucket.IsWeekend(saturdayUTC, time.UTC))
	assert.False(t, timebucket.IsWeekend(saturdayUTC, ny))
	assert.True(t, timebucket.IsWeekend(time.Date(2026, 10, 18, 12, 0, 0, 0, ny), ny))
	assert.False(t, timebucket.IsWeekend(time.Date(2026, 10, 13, 12, 0, 0, 0, ny), ny))
}

func TestMonthHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 28, timebucket.DaysInMonth(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, 31, timebucket.DaysInMonth(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), timebucket.MonthStart(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), time.UTC))

	day, err := timebucket.ParseDateKey("2026-03-08", mustZone(t, "America/New_York"))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", day.Format(timebucket.KeyLayout))
	_, err = timebucket.ParseDateKey("08/03/2026", time.UTC)
	assert.Error(t, err)
}
