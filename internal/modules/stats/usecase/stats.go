package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tally/internal/modules/stats/domain"
	"tally/internal/modules/stats/dto"
	statsin "tally/internal/modules/stats/port/in"
	"tally/internal/modules/stats/service"
	"tally/internal/platform/durationfmt"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timebucket"
)

const monthLayout = "2006-01"

type Interactor struct {
	svc *service.StatsService
}

func NewInteractor(svc *service.StatsService) statsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Day(ctx context.Context, date string) (dto.DayOutput, error) {
	day, err := i.parseDay(date)
	if err != nil {
		return dto.DayOutput{}, err
	}
	sessions, err := i.svc.Day(ctx, day)
	if err != nil {
		return dto.DayOutput{}, err
	}
	total := domain.TotalSeconds(sessions)
	out := dto.DayOutput{
		Date:         timebucket.DateKey(day, i.svc.Location()),
		Activities:   toActivityTotals(domain.GroupByActivity(sessions)),
		Sessions:     make([]dto.SessionOutput, 0, len(sessions)),
		TotalSeconds: total,
		Total:        durationfmt.Format(total),
	}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, dto.SessionOutput{
			ID:              s.ID,
			ActivityName:    s.ActivityName,
			StartTime:       s.StartTime.In(i.svc.Location()),
			DurationSeconds: s.DurationSeconds,
			Formatted:       durationfmt.Format(s.DurationSeconds),
		})
	}
	return out, nil
}

func (i *Interactor) Week(ctx context.Context, anchor string) (dto.PeriodOutput, error) {
	day, err := i.parseDay(anchor)
	if err != nil {
		return dto.PeriodOutput{}, err
	}
	period, err := i.svc.Week(ctx, day)
	if err != nil {
		return dto.PeriodOutput{}, err
	}
	return toPeriodOutput(period), nil
}

func (i *Interactor) Month(ctx context.Context, month string) (dto.PeriodOutput, error) {
	anchor, err := i.parseMonth(month)
	if err != nil {
		return dto.PeriodOutput{}, err
	}
	period, err := i.svc.Month(ctx, anchor)
	if err != nil {
		return dto.PeriodOutput{}, err
	}
	return toPeriodOutput(period), nil
}

func (i *Interactor) Streak(ctx context.Context) (dto.StreakOutput, error) {
	days, err := i.svc.Streak(ctx)
	if err != nil {
		return dto.StreakOutput{}, err
	}
	return dto.StreakOutput{Days: days, AsOf: timebucket.DateKey(i.svc.Now(), i.svc.Location())}, nil
}

func (i *Interactor) Calendar(ctx context.Context, month string) (dto.CalendarOutput, error) {
	anchor, err := i.parseMonth(month)
	if err != nil {
		return dto.CalendarOutput{}, err
	}
	days, err := i.svc.Calendar(ctx, anchor)
	if err != nil {
		return dto.CalendarOutput{}, err
	}
	out := dto.CalendarOutput{Month: anchor.Format(monthLayout), Days: make([]dto.CalendarDayOutput, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, dto.CalendarDayOutput{
			Date:         d.Key,
			TotalSeconds: d.TotalSeconds,
			Total:        durationfmt.Format(d.TotalSeconds),
			Entries:      toActivityTotals(d.Entries),
		})
	}
	return out, nil
}

func (i *Interactor) Progress(ctx context.Context, sessionID string) (dto.ProgressOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return dto.ProgressOutput{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	session, progress, ok, err := i.svc.Progress(ctx, sessionID)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	out := dto.ProgressOutput{SessionID: session.ID, DurationSeconds: session.DurationSeconds, HasTarget: ok}
	if ok {
		out.TargetMinutes = progress.TargetMinutes
		out.RatioPercent = progress.Ratio * 100
		out.Percent = progress.Percent
		out.Achieved = progress.Achieved
	}
	return out, nil
}

// Today is the footer summary: time recorded today and the current streak.
func (i *Interactor) Today(ctx context.Context) (dto.TodayOutput, error) {
	now := i.svc.Now()
	sessions, err := i.svc.Day(ctx, now)
	if err != nil {
		return dto.TodayOutput{}, err
	}
	streak, err := i.svc.Streak(ctx)
	if err != nil {
		return dto.TodayOutput{}, err
	}
	total := domain.TotalSeconds(sessions)
	return dto.TodayOutput{
		Date:         timebucket.DateKey(now, i.svc.Location()),
		TotalSeconds: total,
		Total:        durationfmt.Format(total),
		Streak:       streak,
	}, nil
}

func (i *Interactor) parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return timebucket.DayStart(i.svc.Now(), i.svc.Location()), nil
	}
	day, err := timebucket.ParseDateKey(value, i.svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return day, nil
}

func (i *Interactor) parseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return timebucket.MonthStart(i.svc.Now(), i.svc.Location()), nil
	}
	month, err := time.ParseInLocation(monthLayout, value, i.svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q: %v", apperrors.ErrInvalidInput, value, err)
	}
	return month, nil
}

func toActivityTotals(groups []domain.ActivityTotal) []dto.ActivityTotalOutput {
	out := make([]dto.ActivityTotalOutput, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.ActivityTotalOutput{
			ActivityName:  g.ActivityName,
			ActivityColor: g.ActivityColor,
			Seconds:       g.Seconds,
			Formatted:     durationfmt.Format(g.Seconds),
			Sessions:      g.Sessions,
		})
	}
	return out
}

func toPeriodOutput(p domain.Period) dto.PeriodOutput {
	out := dto.PeriodOutput{
		Start:          p.Start.Format(timebucket.KeyLayout),
		Days:           make([]dto.DayTotalOutput, 0, len(p.Days)),
		TotalSeconds:   p.TotalSeconds,
		Total:          durationfmt.Format(p.TotalSeconds),
		AverageSeconds: p.AverageSeconds,
		Average:        durationfmt.FormatSeconds(p.AverageSeconds),
		ElapsedDays:    p.ElapsedDays,
	}
	for _, d := range p.Days {
		out.Days = append(out.Days, dto.DayTotalOutput{
			Date:      d.Key,
			Weekday:   d.Date.Weekday().String()[:3],
			Seconds:   d.Seconds,
			Formatted: durationfmt.Format(d.Seconds),
		})
	}
	return out
}
