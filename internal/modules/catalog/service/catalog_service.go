package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tally/internal/modules/catalog/domain"
	catalogout "tally/internal/modules/catalog/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
)

type CatalogService struct {
	clock      clock.Clock
	idGen      id.Generator
	activities catalogout.ActivityStore
	goals      catalogout.GoalStore
}

func NewCatalogService(clock clock.Clock, idGen id.Generator, activities catalogout.ActivityStore, goals catalogout.GoalStore) *CatalogService {
	return &CatalogService{clock: clock, idGen: idGen, activities: activities, goals: goals}
}

func (s *CatalogService) CreateActivity(ctx context.Context, name, color, icon, goalID string) (domain.Activity, error) {
	goalID = strings.TrimSpace(goalID)
	if goalID != "" {
		if _, err := s.goals.FindGoal(ctx, goalID); err != nil {
			return domain.Activity{}, fmt.Errorf("activity goal %s: %w", goalID, err)
		}
	}
	activity := domain.Activity{
		ID:        s.idGen.New(),
		Name:      strings.TrimSpace(name),
		Color:     strings.TrimSpace(color),
		Icon:      strings.TrimSpace(icon),
		GoalID:    goalID,
		CreatedAt: s.clock.Now(),
	}
	if err := activity.Validate(); err != nil {
		return domain.Activity{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.activities.SaveActivity(ctx, activity); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (s *CatalogService) Activity(ctx context.Context, id string) (domain.Activity, error) {
	return s.activities.FindActivity(ctx, id)
}

func (s *CatalogService) Activities(ctx context.Context) ([]domain.Activity, error) {
	return s.activities.ListActivities(ctx)
}

func (s *CatalogService) DeleteActivity(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: activity id is required", apperrors.ErrInvalidInput)
	}
	return s.activities.DeleteActivity(ctx, id)
}

func (s *CatalogService) CreateGoal(ctx context.Context, title string, deadline time.Time, weekdayHours, weekendHours float64) (domain.Goal, error) {
	goal := domain.Goal{
		ID:                 s.idGen.New(),
		Title:              strings.TrimSpace(title),
		Deadline:           deadline,
		WeekdayTargetHours: weekdayHours,
		WeekendTargetHours: weekendHours,
		Status:             domain.GoalActive,
		CreatedAt:          s.clock.Now(),
	}
	if err := goal.Validate(); err != nil {
		return domain.Goal{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.goals.SaveGoal(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	return goal, nil
}

func (s *CatalogService) Goal(ctx context.Context, id string) (domain.Goal, error) {
	return s.goals.FindGoal(ctx, id)
}

func (s *CatalogService) Goals(ctx context.Context) ([]domain.Goal, error) {
	return s.goals.ListGoals(ctx)
}

func (s *CatalogService) SetGoalStatus(ctx context.Context, id string, status domain.GoalStatus) (domain.Goal, error) {
	if err := status.Validate(); err != nil {
		return domain.Goal{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	goal, err := s.goals.FindGoal(ctx, id)
	if err != nil {
		return domain.Goal{}, err
	}
	goal.Status = status
	if err := s.goals.SaveGoal(ctx, goal); err != nil {
		return domain.Goal{}, err
	}
	return goal, nil
}
