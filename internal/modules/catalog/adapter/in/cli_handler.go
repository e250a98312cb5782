package in

import (
	"context"
	"time"

	"tally/internal/modules/catalog/dto"
	catalogin "tally/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddActivity(ctx context.Context, name, color, icon, goalID string) (dto.ActivityOutput, error) {
	return h.usecase.CreateActivity(ctx, dto.CreateActivityInput{Name: name, Color: color, Icon: icon, GoalID: goalID})
}

func (h CLIHandler) ListActivities(ctx context.Context) ([]dto.ActivityOutput, error) {
	return h.usecase.ListActivities(ctx)
}

func (h CLIHandler) RemoveActivity(ctx context.Context, id string) error {
	return h.usecase.DeleteActivity(ctx, id)
}

func (h CLIHandler) AddGoal(ctx context.Context, title string, deadline time.Time, weekdayHours, weekendHours float64) (dto.GoalOutput, error) {
	return h.usecase.CreateGoal(ctx, dto.CreateGoalInput{
		Title:              title,
		Deadline:           deadline,
		WeekdayTargetHours: weekdayHours,
		WeekendTargetHours: weekendHours,
	})
}

func (h CLIHandler) ListGoals(ctx context.Context) ([]dto.GoalOutput, error) {
	return h.usecase.ListGoals(ctx)
}

func (h CLIHandler) SetGoalStatus(ctx context.Context, goalID, status string) (dto.GoalOutput, error) {
	return h.usecase.SetGoalStatus(ctx, dto.SetGoalStatusInput{GoalID: goalID, Status: status})
}
