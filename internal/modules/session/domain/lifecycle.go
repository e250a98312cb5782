package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "tally/internal/platform/errors"
)

// ActiveSession is the persisted form of the single in-flight session.
type ActiveSession struct {
	Status          Status        `json:"status"`
	Draft           Draft         `json:"draft"`
	StartedAt       time.Time     `json:"started_at"`
	PausedAt        *time.Time    `json:"paused_at,omitempty"`
	PausedFor       time.Duration `json:"paused_for"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	DurationSeconds int64         `json:"duration_seconds"`
	SessionID       string        `json:"session_id,omitempty"`
}

// ElapsedAt computes active seconds at now for any non-idle snapshot.
func (a ActiveSession) ElapsedAt(now time.Time) int64 {
	switch a.Status {
	case StatusActive:
		return activeSeconds(a.StartedAt, now, a.PausedFor)
	case StatusPaused:
		if a.PausedAt == nil {
			return activeSeconds(a.StartedAt, now, a.PausedFor)
		}
		return activeSeconds(a.StartedAt, *a.PausedAt, a.PausedFor)
	case StatusEnded:
		return a.DurationSeconds
	case StatusIdle:
		return 0
	default:
		return 0
	}
}

// AccumulatedPauseSeconds reports closed pause intervals in whole seconds.
func (a ActiveSession) AccumulatedPauseSeconds() int64 {
	return int64(a.PausedFor / time.Second)
}

// Lifecycle is the state machine of the active session:
// idle -> active <-> paused -> ended -> idle. Rejected transitions return an
// error wrapping ErrInvalidState and leave the state as it was.
type Lifecycle struct {
	state ActiveSession
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: ActiveSession{Status: StatusIdle}}
}

// RestoreLifecycle rebuilds a lifecycle from a persisted snapshot.
func RestoreLifecycle(snapshot ActiveSession) (*Lifecycle, error) {
	if err := snapshot.Status.Validate(); err != nil {
		return nil, err
	}
	switch snapshot.Status {
	case StatusIdle:
		return NewLifecycle(), nil
	case StatusPaused:
		if snapshot.PausedAt == nil {
			return nil, fmt.Errorf("paused snapshot without paused_at")
		}
	case StatusEnded:
		if snapshot.EndedAt == nil {
			return nil, fmt.Errorf("ended snapshot without ended_at")
		}
	case StatusActive:
	}
	if err := snapshot.Draft.Validate(); err != nil {
		return nil, err
	}
	return &Lifecycle{state: snapshot}, nil
}

func (l *Lifecycle) Status() Status {
	return l.state.Status
}

// Snapshot returns a copy of the current state safe to hand to readers.
func (l *Lifecycle) Snapshot() ActiveSession {
	s := l.state
	if s.PausedAt != nil {
		p := *s.PausedAt
		s.PausedAt = &p
	}
	if s.EndedAt != nil {
		e := *s.EndedAt
		s.EndedAt = &e
	}
	if s.Draft.TargetMinutes != nil {
		t := *s.Draft.TargetMinutes
		s.Draft.TargetMinutes = &t
	}
	return s
}

func (l *Lifecycle) Start(draft Draft, now time.Time) error {
	if l.state.Status != StatusIdle {
		return invalid("start", l.state.Status)
	}
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	draft.StartTime = now
	l.state = ActiveSession{
		Status:    StatusActive,
		Draft:     draft,
		StartedAt: now,
	}
	return nil
}

func (l *Lifecycle) Pause(now time.Time) error {
	if l.state.Status != StatusActive {
		return invalid("pause", l.state.Status)
	}
	l.state.Status = StatusPaused
	l.state.PausedAt = &now
	return nil
}

func (l *Lifecycle) Resume(now time.Time) error {
	if l.state.Status != StatusPaused {
		return invalid("resume", l.state.Status)
	}
	l.foldPause(now)
	l.state.Status = StatusActive
	return nil
}

// End freezes the session. An open pause is closed first, exactly as Resume
// would close it.
func (l *Lifecycle) End(now time.Time) (ActiveSession, error) {
	switch l.state.Status {
	case StatusActive:
	case StatusPaused:
		l.foldPause(now)
	case StatusIdle, StatusEnded:
		return ActiveSession{}, invalid("end", l.state.Status)
	default:
		return ActiveSession{}, invalid("end", l.state.Status)
	}
	l.state.Status = StatusEnded
	l.state.EndedAt = &now
	l.state.DurationSeconds = activeSeconds(l.state.StartedAt, now, l.state.PausedFor)
	return l.Snapshot(), nil
}

// AssignID fixes the id the ended session will be stored under. An id that is
// already assigned is kept, so retried saves land on the same record.
func (l *Lifecycle) AssignID(sessionID string) error {
	if l.state.Status != StatusEnded {
		return invalid("assign id", l.state.Status)
	}
	if l.state.SessionID == "" {
		l.state.SessionID = sessionID
	}
	return nil
}

// Discard drops an ended session without saving it.
func (l *Lifecycle) Discard() error {
	if l.state.Status != StatusEnded {
		return invalid("discard", l.state.Status)
	}
	l.state = ActiveSession{Status: StatusIdle}
	return nil
}

// MarkSaved returns an ended session to idle once it has been persisted.
func (l *Lifecycle) MarkSaved() error {
	if l.state.Status != StatusEnded {
		return invalid("mark saved", l.state.Status)
	}
	l.state = ActiveSession{Status: StatusIdle}
	return nil
}

// ElapsedSeconds is the active time at now. While paused the clock stops at
// the pause instant; once ended it is frozen at the final duration.
func (l *Lifecycle) ElapsedSeconds(now time.Time) (int64, error) {
	if l.state.Status == StatusIdle {
		return 0, invalid("elapsed", l.state.Status)
	}
	return l.state.ElapsedAt(now), nil
}

// Completed builds the record to persist from an ended session.
func (l *Lifecycle) Completed() (Completed, error) {
	if l.state.Status != StatusEnded {
		return Completed{}, invalid("complete", l.state.Status)
	}
	snap := l.Snapshot()
	return Completed{
		ID:              snap.SessionID,
		Draft:           snap.Draft,
		EndTime:         *snap.EndedAt,
		DurationSeconds: snap.DurationSeconds,
	}, nil
}

func (l *Lifecycle) foldPause(now time.Time) {
	if l.state.PausedAt != nil {
		if gap := now.Sub(*l.state.PausedAt); gap > 0 {
			l.state.PausedFor += gap
		}
	}
	l.state.PausedAt = nil
}

func activeSeconds(startedAt, at time.Time, paused time.Duration) int64 {
	secs := int64((at.Sub(startedAt) - paused) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

func invalid(op string, from Status) error {
	return fmt.Errorf("%w: cannot %s from %s", apperrors.ErrInvalidState, op, from)
}

// TargetMinutes resolves a session target from its goal and the day type of
// the start instant. It is computed once, at start.
func TargetMinutes(goal GoalTarget, weekend bool) int {
	hours := goal.WeekdayTargetHours
	if weekend {
		hours = goal.WeekendTargetHours
	}
	return int(math.Round(hours * 60))
}
