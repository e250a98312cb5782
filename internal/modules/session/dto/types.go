package dto

import "time"

type StartInput struct {
	ActivityID string
	Location   string
}

// ActiveSessionOutput describes the in-flight session. TargetMinutes is nil
// when no goal is linked.
type ActiveSessionOutput struct {
	Status         string
	ActivityID     string
	ActivityName   string
	ActivityColor  string
	ActivityIcon   string
	Location       string
	GoalID         string
	TargetMinutes  *int
	StartedAt      time.Time
	PausedAt       *time.Time
	EndedAt        *time.Time
	ElapsedSeconds int64
	PausedSeconds  int64
	DraftKey       string
}

type ReflectionInput struct {
	Mood         *int
	Notes        string
	Achievements string
	Challenges   string
}

type SaveInput struct {
	Reflection ReflectionInput
	PhotoPaths []string
}

// SaveOutput reports a saved session. Secondary failures do not fail the save;
// callers check the flags to decide whether to warn.
type SaveOutput struct {
	SessionID        string
	PhotosFailed     bool
	ReflectionFailed bool
	PhotosStored     int
	Warnings         []string
}

type ListInput struct {
	From time.Time
	To   time.Time
}

type CompletedOutput struct {
	ID              string
	ActivityID      string
	ActivityName    string
	ActivityColor   string
	Location        string
	GoalID          string
	TargetMinutes   *int
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int64
	Mood            *int
	Notes           string
	Achievements    string
	Challenges      string
	HasPhotos       bool
}

type ReflectionDraftOutput struct {
	DraftKey     string
	Found        bool
	Mood         string
	Notes        string
	Achievements string
	Challenges   string
}
