package in

import (
	"context"

	"tally/internal/modules/catalog/dto"
)

type Usecase interface {
	CreateActivity(ctx context.Context, input dto.CreateActivityInput) (dto.ActivityOutput, error)
	ListActivities(ctx context.Context) ([]dto.ActivityOutput, error)
	GetActivity(ctx context.Context, id string) (dto.ActivityOutput, error)
	DeleteActivity(ctx context.Context, id string) error
	CreateGoal(ctx context.Context, input dto.CreateGoalInput) (dto.GoalOutput, error)
	ListGoals(ctx context.Context) ([]dto.GoalOutput, error)
	GetGoal(ctx context.Context, id string) (dto.GoalOutput, error)
	SetGoalStatus(ctx context.Context, input dto.SetGoalStatusInput) (dto.GoalOutput, error)
}
