package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	_ "time/tzdata"

	"tally/internal/modules/session/domain"
	"tally/internal/modules/session/service"
	apperrors "tally/internal/platform/errors"
)

type settableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *settableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *settableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type memoryActiveStore struct {
	mu      sync.Mutex
	session *domain.ActiveSession
	failing bool
}

func (m *memoryActiveStore) SaveActive(_ context.Context, s domain.ActiveSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk unavailable")
	}
	m.session = &s
	return nil
}

func (m *memoryActiveStore) LoadActive(context.Context) (domain.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return *m.session, nil
}

func (m *memoryActiveStore) ClearActive(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk unavailable")
	}
	m.session = nil
	return nil
}

type fakeCatalog struct {
	activities map[string]domain.ActivityInfo
	goals      map[string]domain.GoalTarget
}

func (f fakeCatalog) FindActivity(_ context.Context, id string) (domain.ActivityInfo, error) {
	a, ok := f.activities[id]
	if !ok {
		return domain.ActivityInfo{}, apperrors.ErrNotFound
	}
	return a, nil
}

func (f fakeCatalog) FindGoal(_ context.Context, id string) (domain.GoalTarget, error) {
	g, ok := f.goals[id]
	if !ok {
		return domain.GoalTarget{}, apperrors.ErrNotFound
	}
	return g, nil
}

func newCatalog() fakeCatalog {
	return fakeCatalog{
		activities: map[string]domain.ActivityInfo{
			"read":   {ID: "read", Name: "Reading", Color: "#89b4fa", GoalID: "g1"},
			"piano":  {ID: "piano", Name: "Piano"},
			"orphan": {ID: "orphan", Name: "Orphan", GoalID: "gone"},
		},
		goals: map[string]domain.GoalTarget{
			"g1": {ID: "g1", WeekdayTargetHours: 1, WeekendTargetHours: 2},
		},
	}
}

func newService(t *testing.T, clk *settableClock, store *memoryActiveStore) *service.SessionService {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	cat := newCatalog()
	return service.NewSessionService(clk, &seqID{}, loc, store, cat, cat)
}

func TestStartResolvesTargetByDayType(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		activityID string
		at         time.Time
		want       *int
	}{
		// 2026-10-17 is a Saturday in New York; 2026-10-13 a Tuesday.
		{"weekend", "read", time.Date(2026, 10, 17, 14, 0, 0, 0, time.UTC), intPtr(120)},
		{"weekday", "read", time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC), intPtr(60)},
		{"no goal", "piano", time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC), nil},
		{"missing goal", "orphan", time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC), nil},
		// Saturday 02:00 UTC is still Friday evening in New York.
		{"zone decides day", "read", time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC), intPtr(60)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t, &settableClock{now: tc.at}, &memoryActiveStore{})
			active, err := svc.Start(context.Background(), tc.activityID, "")
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			got := active.Draft.TargetMinutes
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected no target, got %d", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected target %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestStartFillsActivityDetails(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC)
	svc := newService(t, &settableClock{now: at}, &memoryActiveStore{})
	active, err := svc.Start(context.Background(), "read", "library")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if active.Draft.ActivityName != "Reading" || active.Draft.ActivityColor != "#89b4fa" || active.Draft.Location != "library" {
		t.Fatalf("unexpected draft: %+v", active.Draft)
	}
	if !active.Draft.StartTime.Equal(at) || !active.StartedAt.Equal(at) {
		t.Fatalf("start time should be the clock instant, got %v", active.Draft.StartTime)
	}
	if _, err := svc.Start(context.Background(), "piano", ""); !errors.Is(err, apperrors.ErrActiveSessionExists) || !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected active session exists, got %v", err)
	}
	if _, err := newService(t, &settableClock{now: at}, &memoryActiveStore{}).Start(context.Background(), "nope", ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected unknown activity to fail, got %v", err)
	}
}

func TestPauseExcludedFromDuration(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)
	clk := &settableClock{now: base}
	svc := newService(t, clk, &memoryActiveStore{})
	ctx := context.Background()

	if _, err := svc.Start(ctx, "piano", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Set(base.Add(20 * time.Minute))
	if _, err := svc.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clk.Set(base.Add(25 * time.Minute))
	if _, elapsed, err := svc.Elapsed(ctx); err != nil || elapsed != 1200 {
		t.Fatalf("elapsed while paused should stop at 1200, got %d %v", elapsed, err)
	}
	clk.Set(base.Add(30 * time.Minute))
	if _, err := svc.Resume(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clk.Set(base.Add(65 * time.Minute))
	ended, err := svc.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.DurationSeconds != 3300 {
		t.Fatalf("expected 3300 active seconds, got %d", ended.DurationSeconds)
	}
	clk.Set(base.Add(3 * time.Hour))
	if _, elapsed, _ := svc.Elapsed(ctx); elapsed != 3300 {
		t.Fatalf("elapsed after end should be frozen, got %d", elapsed)
	}
	if _, err := svc.Pause(ctx); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("pause after end must be rejected, got %v", err)
	}
}

func TestStateSurvivesServiceRestart(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)
	clk := &settableClock{now: base}
	store := &memoryActiveStore{}
	ctx := context.Background()

	if _, err := newService(t, clk, store).Start(ctx, "piano", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Set(base.Add(10 * time.Minute))
	if _, err := newService(t, clk, store).Pause(ctx); err != nil {
		t.Fatalf("pause in a second process: %v", err)
	}
	active, err := newService(t, clk, store).Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Status != domain.StatusPaused {
		t.Fatalf("expected paused after restart, got %s", active.Status)
	}
}

func TestFailedPersistRollsBackTransition(t *testing.T) {
	t.Parallel()
	clk := &settableClock{now: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)}
	store := &memoryActiveStore{}
	svc := newService(t, clk, store)
	ctx := context.Background()
	if _, err := svc.Start(ctx, "piano", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	store.failing = true
	if _, err := svc.Pause(ctx); err == nil {
		t.Fatalf("expected pause to fail when the store fails")
	}
	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.Status != domain.StatusActive {
		t.Fatalf("state must be unchanged after failed persist, got %s", active.Status)
	}
}

func TestDiscardAndMarkSavedReturnToIdle(t *testing.T) {
	t.Parallel()
	clk := &settableClock{now: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)}
	store := &memoryActiveStore{}
	svc := newService(t, clk, store)
	ctx := context.Background()

	if err := svc.Discard(ctx); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("discard from idle must be rejected, got %v", err)
	}
	for _, release := range []func(context.Context) error{svc.Discard, svc.MarkSaved} {
		if _, err := svc.Start(ctx, "piano", ""); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := svc.Completed(ctx); !errors.Is(err, apperrors.ErrInvalidState) {
			t.Fatalf("completed before end must be rejected, got %v", err)
		}
		if _, err := svc.End(ctx); err != nil {
			t.Fatalf("end: %v", err)
		}
		if err := release(ctx); err != nil {
			t.Fatalf("release: %v", err)
		}
		if _, err := svc.Active(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
			t.Fatalf("expected idle, got %v", err)
		}
		if store.session != nil {
			t.Fatalf("idle state should clear the store")
		}
	}
}

func TestCompletedKeepsAssignedIDAcrossRestarts(t *testing.T) {
	t.Parallel()
	clk := &settableClock{now: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)}
	store := &memoryActiveStore{}
	svc := newService(t, clk, store)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "piano", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Set(clk.Now().Add(30 * time.Minute))
	if _, err := svc.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	first, err := svc.Completed(ctx)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if first.ID == "" || store.session == nil || store.session.SessionID != first.ID {
		t.Fatalf("id %q not persisted with the snapshot", first.ID)
	}

	again, err := newService(t, clk, store).Completed(ctx)
	if err != nil {
		t.Fatalf("completed after restart: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("id changed across restart: %q then %q", first.ID, again.ID)
	}
}

func TestCompletedFailsWhenIDCannotBePersisted(t *testing.T) {
	t.Parallel()
	clk := &settableClock{now: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)}
	store := &memoryActiveStore{}
	svc := newService(t, clk, store)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "piano", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	store.failing = true
	if _, err := svc.Completed(ctx); !errors.Is(err, apperrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	store.failing = false
	got, err := svc.Completed(ctx)
	if err != nil || got.ID == "" {
		t.Fatalf("completed after recovery: %+v %v", got, err)
	}
}
