package service_test

import (
	"errors"
	"path/filepath"
	"testing"

	draftout "tally/internal/modules/draft/adapter/out"
	"tally/internal/modules/draft/domain"
	"tally/internal/modules/draft/service"
)

type brokenMedium struct{ calls int }

func (b *brokenMedium) Read(string) (string, bool, error) {
	b.calls++
	return "", false, errors.New("storage disabled")
}

func (b *brokenMedium) Write(string, string) error {
	b.calls++
	return errors.New("storage disabled")
}

func (b *brokenMedium) Remove(string) error {
	b.calls++
	return errors.New("storage disabled")
}

func TestDraftStoreSetGetClear(t *testing.T) {
	t.Parallel()
	store := service.NewDraftStore(draftout.NewFileMedium(filepath.Join(t.TempDir(), "drafts")))
	key := "reflection:act-1:1792054800000"

	if _, ok := store.Get(key); ok {
		t.Fatalf("expected empty draft before first write")
	}
	store.Set(key, domain.FieldMood, "4")
	store.Set(key, domain.FieldNotes, "chapter 3")
	store.Set(key, domain.FieldNotes, "chapter 3 and 4")

	fields, ok := store.Get(key)
	if !ok {
		t.Fatalf("expected draft after write")
	}
	if fields[domain.FieldMood] != "4" || fields[domain.FieldNotes] != "chapter 3 and 4" {
		t.Fatalf("unexpected draft fields: %+v", fields)
	}

	store.Clear(key)
	if _, ok := store.Get(key); ok {
		t.Fatalf("draft must be gone after clear")
	}
	store.Clear(key)
}

func TestDraftStoreKeysAreIndependent(t *testing.T) {
	t.Parallel()
	store := service.NewDraftStore(draftout.NewFileMedium(t.TempDir()))
	a := "reflection:act-1:1792054800000"
	b := "reflection:act-1:1792054800001"
	store.Set(a, domain.FieldChallenges, "focus")
	if _, ok := store.Get(b); ok {
		t.Fatalf("draft leaked across keys")
	}
}

func TestDraftStoreDegradesSilently(t *testing.T) {
	t.Parallel()
	medium := &brokenMedium{}
	store := service.NewDraftStore(medium)
	key := "reflection:act-1:0"

	store.Set(key, domain.FieldNotes, "lost")
	if _, ok := store.Get(key); ok {
		t.Fatalf("broken medium must read as empty")
	}
	store.Clear(key)
	if medium.calls == 0 {
		t.Fatalf("medium should still be attempted")
	}

	nilStore := service.NewDraftStore(nil)
	nilStore.Set(key, domain.FieldNotes, "x")
	if _, ok := nilStore.Get(key); ok {
		t.Fatalf("nil medium must read as empty")
	}
	nilStore.Clear(key)
}

func TestDraftStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	store := service.NewDraftStore(draftout.NewFileMedium(t.TempDir()))
	key := "reflection:act-1:10000"
	store.Set(key, domain.Field("rating"), "5")
	if _, ok := store.Get(key); ok {
		t.Fatalf("unknown field must not be written")
	}
}
