package out

import (
	"context"

	"tally/internal/modules/catalog/domain"
)

type ActivityStore interface {
	SaveActivity(ctx context.Context, activity domain.Activity) error
	FindActivity(ctx context.Context, id string) (domain.Activity, error)
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	DeleteActivity(ctx context.Context, id string) error
}

type GoalStore interface {
	SaveGoal(ctx context.Context, goal domain.Goal) error
	FindGoal(ctx context.Context, id string) (domain.Goal, error)
	ListGoals(ctx context.Context) ([]domain.Goal, error)
}
