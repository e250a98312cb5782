package in

import (
	"context"

	"tally/internal/modules/stats/dto"
	statsin "tally/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Day(ctx context.Context, date string) (dto.DayOutput, error) {
	return h.usecase.Day(ctx, date)
}

func (h CLIHandler) Week(ctx context.Context, anchor string) (dto.PeriodOutput, error) {
	return h.usecase.Week(ctx, anchor)
}

func (h CLIHandler) Month(ctx context.Context, month string) (dto.PeriodOutput, error) {
	return h.usecase.Month(ctx, month)
}

func (h CLIHandler) Streak(ctx context.Context) (dto.StreakOutput, error) {
	return h.usecase.Streak(ctx)
}

func (h CLIHandler) Calendar(ctx context.Context, month string) (dto.CalendarOutput, error) {
	return h.usecase.Calendar(ctx, month)
}

func (h CLIHandler) Progress(ctx context.Context, sessionID string) (dto.ProgressOutput, error) {
	return h.usecase.Progress(ctx, sessionID)
}

func (h CLIHandler) Today(ctx context.Context) (dto.TodayOutput, error) {
	return h.usecase.Today(ctx)
}
