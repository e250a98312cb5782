package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tally/internal/modules/session/domain"
	"tally/internal/modules/session/service"
	apperrors "tally/internal/platform/errors"
)

type fakeRepo struct {
	mu             sync.Mutex
	saveErr        error
	attachErr      error
	reflectionErr  error
	saved          map[string]domain.Completed
	saveCalls      int
	reflectionSeen []domain.Reflection
	entered        chan struct{}
	release        chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: map[string]domain.Completed{}}
}

func (r *fakeRepo) SaveSession(ctx context.Context, s domain.Completed) (string, error) {
	if r.entered != nil {
		r.entered <- struct{}{}
		<-r.release
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.saved[s.ID] = s
	return s.ID, nil
}

func (r *fakeRepo) AttachPhotos(_ context.Context, id string, photos []domain.UploadedPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return r.attachErr
	}
	s := r.saved[id]
	s.HasPhotos = len(photos) > 0
	r.saved[id] = s
	return nil
}

func (r *fakeRepo) SaveReflection(_ context.Context, id string, reflection domain.Reflection) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reflectionSeen = append(r.reflectionSeen, reflection)
	if r.reflectionErr != nil {
		return "", r.reflectionErr
	}
	s := r.saved[id]
	s.Reflection = reflection
	r.saved[id] = s
	return "refl-" + id, nil
}

func (r *fakeRepo) FindCompleted(_ context.Context, id string) (domain.Completed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.saved[id]
	if !ok {
		return domain.Completed{}, apperrors.ErrNotFound
	}
	return s, nil
}

func (r *fakeRepo) ListCompleted(context.Context, time.Time, time.Time) ([]domain.Completed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Completed, 0, len(r.saved))
	for _, s := range r.saved {
		out = append(out, s)
	}
	return out, nil
}

type fakeUploader struct {
	err  error
	keep int
}

func (u fakeUploader) Upload(_ context.Context, files []domain.Photo, sessionID string) ([]domain.UploadedPhoto, error) {
	if u.err != nil {
		return nil, u.err
	}
	n := len(files)
	if u.keep >= 0 && u.keep < n {
		n = u.keep
	}
	out := make([]domain.UploadedPhoto, 0, n)
	for _, f := range files[:n] {
		out = append(out, domain.UploadedPhoto{SessionID: sessionID, Name: f.Name, Ref: "photos/" + f.Name})
	}
	return out, nil
}

type fakeDrafts struct {
	mu      sync.Mutex
	entries map[string]domain.ReflectionDraft
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{entries: map[string]domain.ReflectionDraft{}}
}

func (d *fakeDrafts) Get(_ context.Context, key string) (domain.ReflectionDraft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.entries[key]
	return v, ok
}

func (d *fakeDrafts) Set(_ context.Context, key, field, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.entries[key]
	switch field {
	case domain.DraftFieldMood:
		v.Mood = value
	case domain.DraftFieldNotes:
		v.Notes = value
	case domain.DraftFieldAchievements:
		v.Achievements = value
	case domain.DraftFieldChallenges:
		v.Challenges = value
	}
	d.entries[key] = v
}

func (d *fakeDrafts) Clear(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("sess-%d", s.n)
}

func endedSession() domain.Completed {
	start := time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC)
	return domain.Completed{
		Draft:           domain.Draft{ActivityID: "act-1", ActivityName: "Reading", StartTime: start},
		EndTime:         start.Add(time.Hour),
		DurationSeconds: 3600,
	}
}

func intPtr(v int) *int { return &v }

const key = "reflection:act-1:1791882000000"

func TestSavePipelineStoresEverything(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	drafts := newFakeDrafts()
	drafts.Set(context.Background(), key, domain.DraftFieldNotes, "typed")
	p := service.NewSavePipeline(&seqID{}, repo, fakeUploader{keep: -1}, drafts)

	photos := []domain.Photo{{Name: "a.jpg", Path: "/tmp/a.jpg"}, {Name: "b.jpg", Path: "/tmp/b.jpg"}}
	res, err := p.Save(context.Background(), key, endedSession(), photos, domain.Reflection{Mood: intPtr(4), Notes: "good"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.SessionID != "sess-1" || res.PhotosFailed || res.ReflectionFailed || res.PhotosStored != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	stored, err := repo.FindCompleted(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("find saved session: %v", err)
	}
	if !stored.HasPhotos || stored.Reflection.Mood == nil || *stored.Reflection.Mood != 4 {
		t.Fatalf("expected photos and reflection attached, got %+v", stored)
	}
	if _, ok := drafts.Get(context.Background(), key); ok {
		t.Fatalf("draft should be cleared after save")
	}
}

func TestSavePipelinePhotoFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	drafts := newFakeDrafts()
	drafts.Set(context.Background(), key, domain.DraftFieldNotes, "typed")
	p := service.NewSavePipeline(&seqID{}, repo, fakeUploader{err: errors.New("disk full")}, drafts)

	res, err := p.Save(context.Background(), key, endedSession(), []domain.Photo{{Name: "a.jpg", Path: "/tmp/a.jpg"}}, domain.Reflection{Notes: "ok"})
	if err != nil {
		t.Fatalf("photo failure must not fail the save: %v", err)
	}
	if res.SessionID == "" || !res.PhotosFailed || res.ReflectionFailed {
		t.Fatalf("expected {id, photosFailed, !reflectionFailed}, got %+v", res)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], apperrors.ErrSecondaryWrite) {
		t.Fatalf("expected one secondary write warning, got %v", res.Warnings)
	}
	if _, ok := drafts.Get(context.Background(), key); ok {
		t.Fatalf("draft should be cleared even when photos fail")
	}
	list, _ := repo.ListCompleted(context.Background(), time.Time{}, time.Time{})
	if len(list) != 1 || list[0].ID != res.SessionID {
		t.Fatalf("saved session should be listable, got %+v", list)
	}
}

func TestSavePipelinePartialPhotos(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	p := service.NewSavePipeline(&seqID{}, repo, fakeUploader{keep: 1}, newFakeDrafts())
	photos := []domain.Photo{{Name: "a.jpg"}, {Name: "b.jpg"}, {Name: "c.jpg"}}

	res, err := p.Save(context.Background(), key, endedSession(), photos, domain.Reflection{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.PhotosFailed || res.PhotosStored != 1 {
		t.Fatalf("expected partial photo failure with one stored, got %+v", res)
	}
}

func TestSavePipelineReflectionFailure(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.reflectionErr = errors.New("locked")
	drafts := newFakeDrafts()
	drafts.Set(context.Background(), key, domain.DraftFieldNotes, "typed")
	p := service.NewSavePipeline(&seqID{}, repo, nil, drafts)

	res, err := p.Save(context.Background(), key, endedSession(), nil, domain.Reflection{Notes: "ok"})
	if err != nil {
		t.Fatalf("reflection failure must not fail the save: %v", err)
	}
	if !res.ReflectionFailed || res.PhotosFailed {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if _, ok := drafts.Get(context.Background(), key); ok {
		t.Fatalf("draft should be cleared after a non-fatal failure")
	}
}

func TestSavePipelineSkipsEmptyReflection(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	p := service.NewSavePipeline(&seqID{}, repo, nil, newFakeDrafts())
	if _, err := p.Save(context.Background(), key, endedSession(), nil, domain.Reflection{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(repo.reflectionSeen) != 0 {
		t.Fatalf("empty reflection should not be written, got %v", repo.reflectionSeen)
	}
}

func TestSavePipelinePersistFailureKeepsDraft(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.saveErr = errors.New("db gone")
	drafts := newFakeDrafts()
	drafts.Set(context.Background(), key, domain.DraftFieldNotes, "typed")
	p := service.NewSavePipeline(&seqID{}, repo, fakeUploader{keep: -1}, drafts)

	_, err := p.Save(context.Background(), key, endedSession(), []domain.Photo{{Name: "a.jpg"}}, domain.Reflection{Notes: "x"})
	if !errors.Is(err, apperrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got, ok := drafts.Get(context.Background(), key); !ok || got.Notes != "typed" {
		t.Fatalf("draft must survive a fatal failure, got %+v %v", got, ok)
	}
	if len(repo.reflectionSeen) != 0 {
		t.Fatalf("no later step may run after a fatal failure")
	}
}

func TestSavePipelineRejectsInvalidMood(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	p := service.NewSavePipeline(&seqID{}, repo, nil, newFakeDrafts())
	_, err := p.Save(context.Background(), key, endedSession(), nil, domain.Reflection{Mood: intPtr(6)})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("nothing should be persisted for invalid input")
	}
}

func TestSavePipelineIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	p := service.NewSavePipeline(&seqID{}, repo, nil, newFakeDrafts())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Save(ctx, key, endedSession(), nil, domain.Reflection{})
	if err != nil {
		t.Fatalf("save should run with a cancelled caller context: %v", err)
	}
	if res.SessionID == "" {
		t.Fatalf("expected a session id")
	}
}

func TestSavePipelineConcurrentSavesShareOneRun(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.entered = make(chan struct{}, 2)
	repo.release = make(chan struct{})
	p := service.NewSavePipeline(&seqID{}, repo, nil, newFakeDrafts())

	var wg sync.WaitGroup
	results := make([]service.SaveResult, 2)
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = p.Save(context.Background(), key, endedSession(), nil, domain.Reflection{})
	}()
	<-repo.entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = p.Save(context.Background(), key, endedSession(), nil, domain.Reflection{})
	}()
	time.Sleep(100 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if repo.saveCalls != 1 {
		t.Fatalf("expected one core write, got %d", repo.saveCalls)
	}
	if results[0].SessionID != results[1].SessionID {
		t.Fatalf("joined save should report the same id, got %q and %q", results[0].SessionID, results[1].SessionID)
	}
}
