package dto

import "time"

type CreateActivityInput struct {
	Name   string
	Color  string
	Icon   string
	GoalID string
}

type ActivityOutput struct {
	ID     string
	Name   string
	Color  string
	Icon   string
	GoalID string
}

type CreateGoalInput struct {
	Title              string
	Deadline           time.Time
	WeekdayTargetHours float64
	WeekendTargetHours float64
}

type SetGoalStatusInput struct {
	GoalID string
	Status string
}

type GoalOutput struct {
	ID                 string
	Title              string
	Deadline           time.Time
	WeekdayTargetHours float64
	WeekendTargetHours float64
	Status             string
	CreatedAt          time.Time
}
