package in

import (
	"context"

	"tally/internal/modules/stats/dto"
)

// Usecase serves the aggregate views. Dates are YYYY-MM-DD and months
// YYYY-MM in the configured timezone; empty means today.
type Usecase interface {
	Day(ctx context.Context, date string) (dto.DayOutput, error)
	Week(ctx context.Context, anchor string) (dto.PeriodOutput, error)
	Month(ctx context.Context, month string) (dto.PeriodOutput, error)
	Streak(ctx context.Context) (dto.StreakOutput, error)
	Calendar(ctx context.Context, month string) (dto.CalendarOutput, error)
	Progress(ctx context.Context, sessionID string) (dto.ProgressOutput, error)
	Today(ctx context.Context) (dto.TodayOutput, error)
}
