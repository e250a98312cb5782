// Package domain holds the pure aggregations behind the stats views. Every
// function takes the timezone explicitly; sessions are bucketed by the local
// day of their start time.
package domain

import (
	"sort"
	"time"

	"tally/internal/platform/timebucket"
)

// Session is the part of a completed session the aggregations read.
type Session struct {
	ID              string
	ActivityID      string
	ActivityName    string
	ActivityColor   string
	StartTime       time.Time
	DurationSeconds int64
	TargetMinutes   *int
}

// ActivityTotal merges the sessions of one activity.
type ActivityTotal struct {
	ActivityName  string
	ActivityColor string
	Seconds       int64
	Sessions      int
}

type DayTotal struct {
	Date    time.Time
	Key     string
	Seconds int64
}

// Period is a run of consecutive days with their totals. AverageSeconds
// divides by ElapsedDays, which only differs from len(Days) when now falls
// inside the period.
type Period struct {
	Start          time.Time
	Days           []DayTotal
	TotalSeconds   int64
	AverageSeconds float64
	ElapsedDays    int
}

type CalendarDay struct {
	Date         time.Time
	Key          string
	TotalSeconds int64
	Entries      []ActivityTotal
}

// Progress of a session toward its target. Ratio is not clamped; Percent is
// capped at 100 for display.
type Progress struct {
	TargetMinutes int
	Ratio         float64
	Percent       float64
	Achieved      bool
}

func SessionsOnDay(sessions []Session, dateKey string, loc *time.Location) []Session {
	out := []Session{}
	for _, s := range sessions {
		if timebucket.DateKey(s.StartTime, loc) == dateKey {
			out = append(out, s)
		}
	}
	return out
}

func TotalSeconds(sessions []Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.DurationSeconds
	}
	return total
}

// GroupByActivity merges sessions by activity name, largest total first.
func GroupByActivity(sessions []Session) []ActivityTotal {
	index := map[string]int{}
	out := []ActivityTotal{}
	for _, s := range sessions {
		i, ok := index[s.ActivityName]
		if !ok {
			i = len(out)
			index[s.ActivityName] = i
			out = append(out, ActivityTotal{ActivityName: s.ActivityName, ActivityColor: s.ActivityColor})
		}
		out[i].Seconds += s.DurationSeconds
		out[i].Sessions++
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Seconds != out[b].Seconds {
			return out[a].Seconds > out[b].Seconds
		}
		return out[a].ActivityName < out[b].ActivityName
	})
	return out
}

func GroupByActivityForDay(sessions []Session, dateKey string, loc *time.Location) []ActivityTotal {
	return GroupByActivity(SessionsOnDay(sessions, dateKey, loc))
}

// WeeklyTotals covers the Monday-start week containing anchor.
func WeeklyTotals(sessions []Session, loc *time.Location, anchor, now time.Time) Period {
	return periodTotals(sessions, loc, timebucket.WeekStart(anchor, loc), 7, now)
}

// MonthlyTotals covers the calendar month containing anchor.
func MonthlyTotals(sessions []Session, loc *time.Location, anchor, now time.Time) Period {
	return periodTotals(sessions, loc, timebucket.MonthStart(anchor, loc), timebucket.DaysInMonth(anchor, loc), now)
}

func periodTotals(sessions []Session, loc *time.Location, start time.Time, days int, now time.Time) Period {
	byDay := secondsByDay(sessions, loc)
	p := Period{Start: start, Days: make([]DayTotal, 0, days), ElapsedDays: days}
	for i := 0; i < days; i++ {
		day := timebucket.AddDays(start, i)
		key := timebucket.DateKey(day, loc)
		p.Days = append(p.Days, DayTotal{Date: day, Key: key, Seconds: byDay[key]})
		p.TotalSeconds += byDay[key]
	}
	end := timebucket.AddDays(start, days)
	if !now.Before(start) && now.Before(end) {
		today := timebucket.DayStart(now, loc)
		elapsed := 1
		for d := start; d.Before(today); d = timebucket.AddDays(d, 1) {
			elapsed++
		}
		p.ElapsedDays = elapsed
	}
	p.AverageSeconds = float64(p.TotalSeconds) / float64(p.ElapsedDays)
	return p
}

// StreakDays counts consecutive local days with recorded time, ending today.
// An empty today does not break the streak; counting then starts yesterday.
func StreakDays(sessions []Session, loc *time.Location, now time.Time) int {
	active := map[string]bool{}
	for _, s := range sessions {
		if s.DurationSeconds > 0 {
			active[timebucket.DateKey(s.StartTime, loc)] = true
		}
	}
	day := timebucket.DayStart(now, loc)
	if !active[timebucket.DateKey(day, loc)] {
		day = timebucket.AddDays(day, -1)
	}
	streak := 0
	for active[timebucket.DateKey(day, loc)] {
		streak++
		day = timebucket.AddDays(day, -1)
	}
	return streak
}

// GoalProgress reports progress toward the session target. The bool is false
// when the session has no target, which is not the same as 0%.
func GoalProgress(s Session) (Progress, bool) {
	if s.TargetMinutes == nil {
		return Progress{}, false
	}
	p := Progress{TargetMinutes: *s.TargetMinutes}
	targetSeconds := float64(*s.TargetMinutes) * 60
	if targetSeconds <= 0 {
		p.Ratio, p.Percent, p.Achieved = 1, 100, true
		return p, true
	}
	p.Ratio = float64(s.DurationSeconds) / targetSeconds
	p.Percent = min(p.Ratio, 1) * 100
	p.Achieved = p.Ratio >= 1
	return p, true
}

// Calendar lays out the month containing anchor with one entry per activity
// per day.
func Calendar(sessions []Session, loc *time.Location, anchor time.Time) []CalendarDay {
	start := timebucket.MonthStart(anchor, loc)
	days := timebucket.DaysInMonth(anchor, loc)
	byDay := map[string][]Session{}
	for _, s := range sessions {
		key := timebucket.DateKey(s.StartTime, loc)
		byDay[key] = append(byDay[key], s)
	}
	out := make([]CalendarDay, 0, days)
	for i := 0; i < days; i++ {
		day := timebucket.AddDays(start, i)
		key := timebucket.DateKey(day, loc)
		out = append(out, CalendarDay{
			Date:         day,
			Key:          key,
			TotalSeconds: TotalSeconds(byDay[key]),
			Entries:      GroupByActivity(byDay[key]),
		})
	}
	return out
}

func secondsByDay(sessions []Session, loc *time.Location) map[string]int64 {
	out := map[string]int64{}
	for _, s := range sessions {
		out[timebucket.DateKey(s.StartTime, loc)] += s.DurationSeconds
	}
	return out
}
