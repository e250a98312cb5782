package usecase

import (
	"context"

	"tally/internal/modules/catalog/domain"
	"tally/internal/modules/catalog/dto"
	catalogin "tally/internal/modules/catalog/port/in"
	"tally/internal/modules/catalog/service"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) CreateActivity(ctx context.Context, input dto.CreateActivityInput) (dto.ActivityOutput, error) {
	activity, err := i.svc.CreateActivity(ctx, input.Name, input.Color, input.Icon, input.GoalID)
	if err != nil {
		return dto.ActivityOutput{}, err
	}
	return toActivityOutput(activity), nil
}

func (i *Interactor) ListActivities(ctx context.Context) ([]dto.ActivityOutput, error) {
	activities, err := i.svc.Activities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityOutput, 0, len(activities))
	for _, a := range activities {
		out = append(out, toActivityOutput(a))
	}
	return out, nil
}

func (i *Interactor) GetActivity(ctx context.Context, id string) (dto.ActivityOutput, error) {
	activity, err := i.svc.Activity(ctx, id)
	if err != nil {
		return dto.ActivityOutput{}, err
	}
	return toActivityOutput(activity), nil
}

func (i *Interactor) DeleteActivity(ctx context.Context, id string) error {
	return i.svc.DeleteActivity(ctx, id)
}

func (i *Interactor) CreateGoal(ctx context.Context, input dto.CreateGoalInput) (dto.GoalOutput, error) {
	goal, err := i.svc.CreateGoal(ctx, input.Title, input.Deadline, input.WeekdayTargetHours, input.WeekendTargetHours)
	if err != nil {
		return dto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func (i *Interactor) ListGoals(ctx context.Context) ([]dto.GoalOutput, error) {
	goals, err := i.svc.Goals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GoalOutput, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalOutput(g))
	}
	return out, nil
}

func (i *Interactor) GetGoal(ctx context.Context, id string) (dto.GoalOutput, error) {
	goal, err := i.svc.Goal(ctx, id)
	if err != nil {
		return dto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func (i *Interactor) SetGoalStatus(ctx context.Context, input dto.SetGoalStatusInput) (dto.GoalOutput, error) {
	goal, err := i.svc.SetGoalStatus(ctx, input.GoalID, domain.GoalStatus(input.Status))
	if err != nil {
		return dto.GoalOutput{}, err
	}
	return toGoalOutput(goal), nil
}

func toActivityOutput(a domain.Activity) dto.ActivityOutput {
	return dto.ActivityOutput{ID: a.ID, Name: a.Name, Color: a.Color, Icon: a.Icon, GoalID: a.GoalID}
}

func toGoalOutput(g domain.Goal) dto.GoalOutput {
	return dto.GoalOutput{
		ID:                 g.ID,
		Title:              g.Title,
		Deadline:           g.Deadline,
		WeekdayTargetHours: g.WeekdayTargetHours,
		WeekendTargetHours: g.WeekendTargetHours,
		Status:             string(g.Status),
		CreatedAt:          g.CreatedAt,
	}
}
