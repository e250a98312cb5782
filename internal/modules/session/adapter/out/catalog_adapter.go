package out

import (
	"context"

	catalogin "tally/internal/modules/catalog/port/in"
	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
)

// CatalogAdapter reads activities and goals from the catalog module.
type CatalogAdapter struct {
	catalog catalogin.Usecase
}

func NewCatalogAdapter(catalog catalogin.Usecase) *CatalogAdapter {
	return &CatalogAdapter{catalog: catalog}
}

var (
	_ sessionout.ActivityReader = (*CatalogAdapter)(nil)
	_ sessionout.GoalReader     = (*CatalogAdapter)(nil)
)

func (a *CatalogAdapter) FindActivity(ctx context.Context, activityID string) (domain.ActivityInfo, error) {
	activity, err := a.catalog.GetActivity(ctx, activityID)
	if err != nil {
		return domain.ActivityInfo{}, err
	}
	return domain.ActivityInfo{
		ID:     activity.ID,
		Name:   activity.Name,
		Color:  activity.Color,
		Icon:   activity.Icon,
		GoalID: activity.GoalID,
	}, nil
}

func (a *CatalogAdapter) FindGoal(ctx context.Context, goalID string) (domain.GoalTarget, error) {
	goal, err := a.catalog.GetGoal(ctx, goalID)
	if err != nil {
		return domain.GoalTarget{}, err
	}
	return domain.GoalTarget{
		ID:                 goal.ID,
		WeekdayTargetHours: goal.WeekdayTargetHours,
		WeekendTargetHours: goal.WeekendTargetHours,
	}, nil
}
