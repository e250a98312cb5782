package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	catalogdto "tally/internal/modules/catalog/dto"
	sessiondto "tally/internal/modules/session/dto"
	statsdto "tally/internal/modules/stats/dto"
)

type fakeCatalog struct{}

func (fakeCatalog) ListActivities(context.Context) ([]catalogdto.ActivityOutput, error) {
	return []catalogdto.ActivityOutput{{ID: "a1", Name: "Reading"}}, nil
}

func (fakeCatalog) ListGoals(context.Context) ([]catalogdto.GoalOutput, error) { return nil, nil }

type fakeSession struct {
	started int
	saves   int
	fields  map[string]string
}

func (f *fakeSession) Start(_ context.Context, activityID, location string) (sessiondto.ActiveSessionOutput, error) {
	f.started++
	return sessiondto.ActiveSessionOutput{Status: statusActive, ActivityID: activityID, Location: location}, nil
}
func (f *fakeSession) Pause(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{Status: statusPaused}, nil
}
func (f *fakeSession) Resume(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{Status: statusActive}, nil
}
func (f *fakeSession) End(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{Status: statusEnded}, nil
}
func (f *fakeSession) Discard(context.Context) error { return nil }
func (f *fakeSession) GetActive(context.Context) (sessiondto.ActiveSessionOutput, error) {
	return sessiondto.ActiveSessionOutput{}, errors.New("none")
}
func (f *fakeSession) Save(context.Context, *int, string, string, string, []string) (sessiondto.SaveOutput, error) {
	f.saves++
	return sessiondto.SaveOutput{}, nil
}
func (f *fakeSession) SetDraftField(_ context.Context, field, value string) error {
	if f.fields == nil {
		f.fields = map[string]string{}
	}
	f.fields[field] = value
	return nil
}
func (f *fakeSession) GetDraft(context.Context) (sessiondto.ReflectionDraftOutput, error) {
	return sessiondto.ReflectionDraftOutput{}, nil
}

type fakeStats struct{}

func (fakeStats) Today(context.Context) (statsdto.TodayOutput, error) {
	return statsdto.TodayOutput{Total: "1h 0m", Streak: 2}, nil
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) Notify(string, string) error {
	n.calls++
	return nil
}

var base = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newTestModel(sess *fakeSession, notifier *countingNotifier) Model {
	m := NewModel(fakeCatalog{}, sess, fakeStats{}, notifier)
	m.now = func() time.Time { return base }
	return m
}

func intPtr(v int) *int { return &v }

func TestStartIsRefusedWhileSessionExists(t *testing.T) {
	sess := &fakeSession{}
	m := newTestModel(sess, &countingNotifier{})
	next, _ := m.Update(activeLoadedMsg{active: sessiondto.ActiveSessionOutput{Status: statusEnded, ActivityName: "Reading"}})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Model)
	if cmd != nil {
		t.Fatalf("expected no command while a session exists")
	}
	if !strings.Contains(m.status, "finish or discard") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if sess.started != 0 {
		t.Fatalf("start must not be called")
	}
}

func TestElapsedFreezesOutsideActive(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	m.setActive(sessiondto.ActiveSessionOutput{Status: statusActive, ElapsedSeconds: 100})
	m.clock = base.Add(5 * time.Second)
	if got := m.elapsed(); got != 105 {
		t.Fatalf("active elapsed = %d, want 105", got)
	}

	m.setActive(sessiondto.ActiveSessionOutput{Status: statusEnded, ElapsedSeconds: 100})
	m.clock = base.Add(time.Hour)
	if got := m.elapsed(); got != 100 {
		t.Fatalf("ended elapsed = %d, want 100", got)
	}
}

func TestTargetNotificationFiresOnce(t *testing.T) {
	notifier := &countingNotifier{}
	m := newTestModel(&fakeSession{}, notifier)
	m.setActive(sessiondto.ActiveSessionOutput{
		Status:         statusActive,
		ActivityName:   "Reading",
		TargetMinutes:  intPtr(1),
		ElapsedSeconds: 58,
		DraftKey:       "reflection:a1:1",
	})

	m.clock = base.Add(time.Second)
	if cmd := m.maybeNotify(); cmd != nil {
		t.Fatalf("notified before reaching target")
	}

	m.clock = base.Add(2 * time.Second)
	cmd := m.maybeNotify()
	if cmd == nil {
		t.Fatalf("expected notification at target")
	}
	cmd()
	if notifier.calls != 1 {
		t.Fatalf("notify calls = %d, want 1", notifier.calls)
	}

	m.clock = base.Add(time.Minute)
	if cmd := m.maybeNotify(); cmd != nil {
		t.Fatalf("notification fired twice")
	}
}

func TestRenderTargetDistinguishesMissingFromZero(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	m.setActive(sessiondto.ActiveSessionOutput{Status: statusActive})
	if got := m.renderTarget(); !strings.Contains(got, "no target") {
		t.Fatalf("nil target rendered %q", got)
	}

	m.setActive(sessiondto.ActiveSessionOutput{Status: statusActive, TargetMinutes: intPtr(0)})
	got := m.renderTarget()
	if strings.Contains(got, "no target") || !strings.Contains(got, "target reached") {
		t.Fatalf("zero target rendered %q", got)
	}
}

func TestSaveFailureKeepsEndedSession(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	m.setActive(sessiondto.ActiveSessionOutput{Status: statusEnded})
	m.saving = true

	next, cmd := m.Update(savedMsg{err: errors.New("disk full")})
	m = next.(Model)
	if !m.hasActive || m.active.Status != statusEnded {
		t.Fatalf("ended session lost after failed save")
	}
	if m.saving || !strings.Contains(m.banner, "save failed") {
		t.Fatalf("unexpected state saving=%v banner=%q", m.saving, m.banner)
	}
	if cmd == nil {
		t.Fatalf("expected active reload command")
	}
}

func TestSaveWarningsShowBanner(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	m.setActive(sessiondto.ActiveSessionOutput{Status: statusEnded})
	m.photos = []string{"a.jpg"}

	next, _ := m.Update(savedMsg{out: sessiondto.SaveOutput{SessionID: "s1", PhotosFailed: true, Warnings: []string{"photo upload failed"}}})
	m = next.(Model)
	if m.hasActive || len(m.photos) != 0 {
		t.Fatalf("session should be cleared after save")
	}
	if !strings.Contains(m.banner, "photo upload failed") {
		t.Fatalf("banner = %q", m.banner)
	}
}

func TestReflectionAutosaveSendsChangedFields(t *testing.T) {
	sess := &fakeSession{}
	m := newTestModel(sess, &countingNotifier{})
	m.form = newReflectionForm(sessiondto.ReflectionDraftOutput{Notes: "kept"}, 60)

	m.form.values.Mood = "4"
	m.form.values.Challenges = "focus"
	cmd := m.autosaveCmd()
	if cmd == nil {
		t.Fatalf("expected autosave command")
	}
	if msg := cmd().(draftSavedMsg); msg.err != nil {
		t.Fatalf("autosave: %v", msg.err)
	}
	if len(sess.fields) != 2 || sess.fields[fieldMood] != "4" || sess.fields[fieldChallenges] != "focus" {
		t.Fatalf("fields = %#v", sess.fields)
	}
	if cmd := m.autosaveCmd(); cmd != nil {
		t.Fatalf("unchanged form must not autosave")
	}

	mood, notes, _, challenges := m.form.input()
	if mood == nil || *mood != 4 || notes != "kept" || challenges != "focus" {
		t.Fatalf("input = %v %q %q", mood, notes, challenges)
	}
}

func TestPaletteQueuesPhotosAndLocation(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	next, _ := m.executePalette("location  the library")
	m = next.(Model)
	next, _ = m.executePalette("photo /tmp/a b.jpg")
	m = next.(Model)
	if m.location != "the library" {
		t.Fatalf("location = %q", m.location)
	}
	if len(m.photos) != 1 || m.photos[0] != "/tmp/a b.jpg" {
		t.Fatalf("photos = %#v", m.photos)
	}
}

func TestTickChainStopsAfterEnd(t *testing.T) {
	m := newTestModel(&fakeSession{}, &countingNotifier{})
	next, cmd := m.Update(transitionMsg{op: "started", active: sessiondto.ActiveSessionOutput{Status: statusActive}})
	m = next.(Model)
	if cmd == nil || !m.ticking {
		t.Fatalf("starting a session should start the clock")
	}
	gen := m.tickGen

	next, cmd = m.Update(tickMsg{gen: gen, at: base.Add(time.Second)})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("running clock should re-arm")
	}

	next, _ = m.Update(transitionMsg{op: "ended", active: sessiondto.ActiveSessionOutput{Status: statusEnded, ElapsedSeconds: 1}})
	m = next.(Model)
	next, _ = m.Update(tickMsg{gen: gen, at: base.Add(2 * time.Second)})
	m = next.(Model)
	if m.ticking {
		t.Fatalf("clock should stop once the session ended")
	}
	if got := m.elapsed(); got != 1 {
		t.Fatalf("ended elapsed = %d, want 1", got)
	}

	next, _ = m.Update(tickMsg{gen: gen - 1, at: base.Add(3 * time.Second)})
	if next.(Model).ticking {
		t.Fatalf("stale tick must not restart the clock")
	}
}

// runCmd executes cmd and every command of a batch it expands to.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

func TestCompletedReflectionSavesWithoutDraftWrite(t *testing.T) {
	sess := &fakeSession{}
	m := newTestModel(sess, &countingNotifier{})
	m.setActive(sessiondto.ActiveSessionOutput{Status: statusEnded})
	m.form = newReflectionForm(sessiondto.ReflectionDraftOutput{}, 60)
	m.form.values.Notes = "typed at the last moment"
	m.form.form.State = huh.StateCompleted

	next, cmd := m.updateForm(struct{}{})
	m = next.(Model)
	if m.form != nil || !m.saving {
		t.Fatalf("completed form should start saving")
	}
	runCmd(cmd)
	if sess.saves != 1 {
		t.Fatalf("saves = %d, want 1", sess.saves)
	}
	if len(sess.fields) != 0 {
		t.Fatalf("draft written alongside the save: %#v", sess.fields)
	}
}
