package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

func (s GoalStatus) Validate() error {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused:
		return nil
	default:
		return fmt.Errorf("unsupported goal status %q", string(s))
	}
}

// Activity is a user-defined category of effort. Activities are never edited,
// only created and deleted.
type Activity struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	GoalID    string
	CreatedAt time.Time
}

func (a Activity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Goal is a daily effort target split by weekday and weekend.
type Goal struct {
	ID                 string
	Title              string
	Deadline           time.Time
	WeekdayTargetHours float64
	WeekendTargetHours float64
	Status             GoalStatus
	CreatedAt          time.Time
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("title is required")
	}
	for _, h := range []float64{g.WeekdayTargetHours, g.WeekendTargetHours} {
		if h < 0 || h > 24 || math.IsNaN(h) {
			return fmt.Errorf("target hours must be within 0..24, got %v", h)
		}
	}
	return g.Status.Validate()
}

// TargetMinutes converts the day-type target from hours to whole minutes.
func (g Goal) TargetMinutes(weekend bool) int {
	hours := g.WeekdayTargetHours
	if weekend {
		hours = g.WeekendTargetHours
	}
	return int(math.Round(hours * 60))
}
