package dto

import "time"

type ActivityTotalOutput struct {
	ActivityName  string
	ActivityColor string
	Seconds       int64
	Formatted     string
	Sessions      int
}

type SessionOutput struct {
	ID              string
	ActivityName    string
	StartTime       time.Time
	DurationSeconds int64
	Formatted       string
}

type DayOutput struct {
	Date         string
	Activities   []ActivityTotalOutput
	Sessions     []SessionOutput
	TotalSeconds int64
	Total        string
}

type DayTotalOutput struct {
	Date      string
	Weekday   string
	Seconds   int64
	Formatted string
}

type PeriodOutput struct {
	Start          string
	Days           []DayTotalOutput
	TotalSeconds   int64
	Total          string
	AverageSeconds float64
	Average        string
	ElapsedDays    int
}

type StreakOutput struct {
	Days int
	AsOf string
}

type CalendarDayOutput struct {
	Date         string
	TotalSeconds int64
	Total        string
	Entries      []ActivityTotalOutput
}

type CalendarOutput struct {
	Month string
	Days  []CalendarDayOutput
}

// ProgressOutput is nil-safe for sessions without a target: HasTarget is
// false and the other fields are zero.
type ProgressOutput struct {
	SessionID       string
	HasTarget       bool
	TargetMinutes   int
	DurationSeconds int64
	RatioPercent    float64
	Percent         float64
	Achieved        bool
}

type TodayOutput struct {
	Date         string
	TotalSeconds int64
	Total        string
	Streak       int
}
