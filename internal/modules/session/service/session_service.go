package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
	"tally/internal/platform/logging"
	"tally/internal/platform/timebucket"
)

// SessionService owns the single active session. Every transition goes
// through it and is written to the active store before it is acknowledged.
type SessionService struct {
	mu         sync.Mutex
	clock      clock.Clock
	ids        id.Generator
	loc        *time.Location
	store      sessionout.ActiveSessionStore
	activities sessionout.ActivityReader
	goals      sessionout.GoalReader
	lifecycle  *domain.Lifecycle
}

func NewSessionService(clock clock.Clock, ids id.Generator, loc *time.Location, store sessionout.ActiveSessionStore, activities sessionout.ActivityReader, goals sessionout.GoalReader) *SessionService {
	if loc == nil {
		loc = time.Local
	}
	return &SessionService{clock: clock, ids: ids, loc: loc, store: store, activities: activities, goals: goals}
}

// Start begins a session for activityID. It fails while another session is
// active, paused or ended but unsaved.
func (s *SessionService) Start(ctx context.Context, activityID, location string) (domain.ActiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.ActiveSession{}, err
	}
	if status := s.lifecycle.Status(); status != domain.StatusIdle {
		return domain.ActiveSession{}, fmt.Errorf("%w: %w (%s)", apperrors.ErrInvalidState, apperrors.ErrActiveSessionExists, status)
	}
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return domain.ActiveSession{}, fmt.Errorf("%w: activity id is required", apperrors.ErrInvalidInput)
	}

	draft := domain.Draft{ActivityID: activityID, ActivityName: activityID, Location: strings.TrimSpace(location)}
	if s.activities != nil {
		activity, err := s.activities.FindActivity(ctx, activityID)
		if err != nil {
			return domain.ActiveSession{}, err
		}
		draft.ActivityName = activity.Name
		draft.ActivityColor = activity.Color
		draft.ActivityIcon = activity.Icon
		draft.GoalID = activity.GoalID
	}

	now := s.clock.Now()
	if err := s.resolveTarget(ctx, &draft, now); err != nil {
		return domain.ActiveSession{}, err
	}
	if err := s.transition(ctx, "start", func(l *domain.Lifecycle) error { return l.Start(draft, now) }); err != nil {
		return domain.ActiveSession{}, err
	}
	return s.lifecycle.Snapshot(), nil
}

func (s *SessionService) Pause(ctx context.Context) (domain.ActiveSession, error) {
	return s.step(ctx, "pause", func(l *domain.Lifecycle, now time.Time) error { return l.Pause(now) })
}

func (s *SessionService) Resume(ctx context.Context) (domain.ActiveSession, error) {
	return s.step(ctx, "resume", func(l *domain.Lifecycle, now time.Time) error { return l.Resume(now) })
}

func (s *SessionService) End(ctx context.Context) (domain.ActiveSession, error) {
	return s.step(ctx, "end", func(l *domain.Lifecycle, now time.Time) error {
		_, err := l.End(now)
		return err
	})
}

// Discard drops an ended session. Its reflection draft is left in place.
func (s *SessionService) Discard(ctx context.Context) error {
	_, err := s.step(ctx, "discard", func(l *domain.Lifecycle, _ time.Time) error { return l.Discard() })
	return err
}

// MarkSaved releases the ended session after the save pipeline succeeded.
func (s *SessionService) MarkSaved(ctx context.Context) error {
	_, err := s.step(ctx, "mark saved", func(l *domain.Lifecycle, _ time.Time) error { return l.MarkSaved() })
	return err
}

func (s *SessionService) Active(ctx context.Context) (domain.ActiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.ActiveSession{}, err
	}
	if s.lifecycle.Status() == domain.StatusIdle {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return s.lifecycle.Snapshot(), nil
}

// Elapsed returns the snapshot together with its active seconds right now.
func (s *SessionService) Elapsed(ctx context.Context) (domain.ActiveSession, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.ActiveSession{}, 0, err
	}
	elapsed, err := s.lifecycle.ElapsedSeconds(s.clock.Now())
	if err != nil {
		return domain.ActiveSession{}, 0, err
	}
	return s.lifecycle.Snapshot(), elapsed, nil
}

// Completed returns the frozen record of the ended session. The first call
// assigns the record id and persists it with the snapshot, so a save retried
// after a crash or a failed release reuses it.
func (s *SessionService) Completed(ctx context.Context) (domain.Completed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Completed{}, err
	}
	if s.lifecycle.Status() == domain.StatusEnded && s.lifecycle.Snapshot().SessionID == "" && s.ids != nil {
		sessionID := s.ids.New()
		if err := s.transition(ctx, "assign id", func(l *domain.Lifecycle) error { return l.AssignID(sessionID) }); err != nil {
			return domain.Completed{}, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
		}
	}
	return s.lifecycle.Completed()
}

func (s *SessionService) Location() *time.Location {
	return s.loc
}

func (s *SessionService) step(ctx context.Context, op string, fn func(*domain.Lifecycle, time.Time) error) (domain.ActiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.ActiveSession{}, err
	}
	now := s.clock.Now()
	if err := s.transition(ctx, op, func(l *domain.Lifecycle) error { return fn(l, now) }); err != nil {
		return domain.ActiveSession{}, err
	}
	return s.lifecycle.Snapshot(), nil
}

// transition applies fn and persists the result. If persisting fails the
// in-memory state is rolled back so memory and disk agree.
func (s *SessionService) transition(ctx context.Context, op string, fn func(*domain.Lifecycle) error) error {
	before := s.lifecycle.Snapshot()
	if err := fn(s.lifecycle); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		restored, restoreErr := domain.RestoreLifecycle(before)
		if restoreErr != nil {
			restored = domain.NewLifecycle()
		}
		s.lifecycle = restored
		return fmt.Errorf("%s: %w", op, err)
	}
	logging.Logger.Debug("session transition", "op", op, "from", before.Status, "to", s.lifecycle.Status())
	return nil
}

func (s *SessionService) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if s.lifecycle.Status() == domain.StatusIdle {
		return s.store.ClearActive(ctx)
	}
	return s.store.SaveActive(ctx, s.lifecycle.Snapshot())
}

func (s *SessionService) ensureLoaded(ctx context.Context) error {
	if s.lifecycle != nil {
		return nil
	}
	if s.store == nil {
		s.lifecycle = domain.NewLifecycle()
		return nil
	}
	snapshot, err := s.store.LoadActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		s.lifecycle = domain.NewLifecycle()
		return nil
	}
	if err != nil {
		return err
	}
	restored, err := domain.RestoreLifecycle(snapshot)
	if err != nil {
		return fmt.Errorf("restore active session: %w", err)
	}
	s.lifecycle = restored
	return nil
}

// resolveTarget fixes the session target from the linked goal and the day
// type at start. A goal that no longer exists leaves the session untargeted.
func (s *SessionService) resolveTarget(ctx context.Context, draft *domain.Draft, now time.Time) error {
	if draft.GoalID == "" || s.goals == nil {
		return nil
	}
	goal, err := s.goals.FindGoal(ctx, draft.GoalID)
	if errors.Is(err, apperrors.ErrNotFound) {
		logging.Logger.Warn("linked goal missing, starting without target", "goal_id", draft.GoalID, "activity_id", draft.ActivityID)
		draft.GoalID = ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("load goal: %w", err)
	}
	target := domain.TargetMinutes(goal, timebucket.IsWeekend(now, s.loc))
	draft.TargetMinutes = &target
	return nil
}
