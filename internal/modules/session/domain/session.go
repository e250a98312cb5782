package domain

import (
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

// NeutralMood is shown when a session has no mood recorded. It is never stored.
const NeutralMood = 3

type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

func (s Status) Validate() error {
	switch s {
	case StatusIdle, StatusActive, StatusPaused, StatusEnded:
		return nil
	default:
		return fmt.Errorf("unknown session status %q", string(s))
	}
}

// Draft is what is known about a session when it starts. TargetMinutes is nil
// when no goal is linked, which is not the same as a zero target.
type Draft struct {
	ActivityID    string    `json:"activity_id"`
	ActivityName  string    `json:"activity_name"`
	StartTime     time.Time `json:"start_time"`
	Location      string    `json:"location,omitempty"`
	ActivityColor string    `json:"activity_color,omitempty"`
	ActivityIcon  string    `json:"activity_icon,omitempty"`
	GoalID        string    `json:"goal_id,omitempty"`
	TargetMinutes *int      `json:"target_minutes,omitempty"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.ActivityID) == "" {
		return fmt.Errorf("activity id is required")
	}
	return nil
}

// Completed is an ended, persisted session. DurationSeconds never includes
// paused time.
type Completed struct {
	ID              string
	Draft           Draft
	EndTime         time.Time
	DurationSeconds int64
	Reflection      Reflection
	HasPhotos       bool
}

// Reflection is the user's post-session write-up. Mood is nil when not given.
type Reflection struct {
	Mood         *int
	Notes        string
	Achievements string
	Challenges   string
}

func (r Reflection) Validate() error {
	if r.Mood != nil && (*r.Mood < 1 || *r.Mood > 5) {
		return fmt.Errorf("mood must be within 1..5, got %d", *r.Mood)
	}
	return nil
}

func (r Reflection) IsEmpty() bool {
	return r.Mood == nil && r.Notes == "" && r.Achievements == "" && r.Challenges == ""
}

// DisplayMood returns the mood to render, defaulting to NeutralMood.
func (r Reflection) DisplayMood() int {
	if r.Mood == nil {
		return NeutralMood
	}
	return *r.Mood
}

// Reflection draft field names, as cached while the user types.
const (
	DraftFieldMood         = "mood"
	DraftFieldNotes        = "notes"
	DraftFieldAchievements = "achievements"
	DraftFieldChallenges   = "challenges"
)

// ReflectionDraft is unsaved reflection text as typed, mood included.
type ReflectionDraft struct {
	Mood         string
	Notes        string
	Achievements string
	Challenges   string
}

// DraftKey identifies the reflection draft of the session started by
// activityID at startedAt.
func DraftKey(activityID string, startedAt time.Time) string {
	return fmt.Sprintf("reflection:%s:%d", strings.TrimSpace(activityID), startedAt.UnixMilli())
}

// Photo is a local file attached to a session before upload.
type Photo struct {
	Name string
	Path string
}

// UploadedPhoto is a stored photo reference.
type UploadedPhoto struct {
	SessionID string
	Name      string
	Ref       string
}

// GoalTarget carries the day-type targets of the goal linked to a session.
type GoalTarget struct {
	ID                 string
	WeekdayTargetHours float64
	WeekendTargetHours float64
}

// ActivityInfo is the catalog view of an activity used when starting.
type ActivityInfo struct {
	ID     string
	Name   string
	Color  string
	Icon   string
	GoalID string
}
