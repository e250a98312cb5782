package service

import (
	"context"
	"fmt"
	"time"

	"tally/internal/modules/stats/domain"
	statsout "tally/internal/modules/stats/port/out"
	"tally/internal/platform/clock"
	"tally/internal/platform/timebucket"
)

// StatsService loads the sessions each view needs and runs the aggregation
// in the configured timezone.
type StatsService struct {
	clock  clock.Clock
	loc    *time.Location
	source statsout.SessionSource
}

func NewStatsService(clock clock.Clock, loc *time.Location, source statsout.SessionSource) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{clock: clock, loc: loc, source: source}
}

func (s *StatsService) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *StatsService) Location() *time.Location {
	return s.loc
}

// Day returns the sessions that started on day, in start order.
func (s *StatsService) Day(ctx context.Context, day time.Time) ([]domain.Session, error) {
	start := timebucket.DayStart(day, s.loc)
	sessions, err := s.list(ctx, start, timebucket.AddDays(start, 1))
	if err != nil {
		return nil, err
	}
	return domain.SessionsOnDay(sessions, timebucket.DateKey(start, s.loc), s.loc), nil
}

func (s *StatsService) Week(ctx context.Context, anchor time.Time) (domain.Period, error) {
	start := timebucket.WeekStart(anchor, s.loc)
	sessions, err := s.list(ctx, start, timebucket.AddDays(start, 7))
	if err != nil {
		return domain.Period{}, err
	}
	return domain.WeeklyTotals(sessions, s.loc, anchor, s.clock.Now()), nil
}

func (s *StatsService) Month(ctx context.Context, anchor time.Time) (domain.Period, error) {
	start := timebucket.MonthStart(anchor, s.loc)
	sessions, err := s.list(ctx, start, timebucket.AddDays(start, timebucket.DaysInMonth(anchor, s.loc)))
	if err != nil {
		return domain.Period{}, err
	}
	return domain.MonthlyTotals(sessions, s.loc, anchor, s.clock.Now()), nil
}

// Streak reports the streak as of now.
func (s *StatsService) Streak(ctx context.Context) (int, error) {
	now := s.clock.Now()
	sessions, err := s.list(ctx, time.Time{}, timebucket.AddDays(timebucket.DayStart(now, s.loc), 1))
	if err != nil {
		return 0, err
	}
	return domain.StreakDays(sessions, s.loc, now), nil
}

func (s *StatsService) Calendar(ctx context.Context, anchor time.Time) ([]domain.CalendarDay, error) {
	start := timebucket.MonthStart(anchor, s.loc)
	sessions, err := s.list(ctx, start, timebucket.AddDays(start, timebucket.DaysInMonth(anchor, s.loc)))
	if err != nil {
		return nil, err
	}
	return domain.Calendar(sessions, s.loc, anchor), nil
}

func (s *StatsService) Progress(ctx context.Context, sessionID string) (domain.Session, domain.Progress, bool, error) {
	session, err := s.source.FindSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, domain.Progress{}, false, err
	}
	progress, ok := domain.GoalProgress(session)
	return session, progress, ok, nil
}

func (s *StatsService) list(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	sessions, err := s.source.ListSessions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return sessions, nil
}
