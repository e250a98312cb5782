package out

import (
	"context"

	draftin "tally/internal/modules/draft/port/in"
	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
)

// DraftCacheAdapter exposes the draft module as the session reflection cache.
type DraftCacheAdapter struct {
	drafts draftin.Usecase
}

func NewDraftCacheAdapter(drafts draftin.Usecase) sessionout.ReflectionDraftCache {
	return &DraftCacheAdapter{drafts: drafts}
}

func (a *DraftCacheAdapter) Get(ctx context.Context, key string) (domain.ReflectionDraft, bool) {
	r, ok := a.drafts.Get(ctx, key)
	if !ok {
		return domain.ReflectionDraft{}, false
	}
	return domain.ReflectionDraft{
		Mood:         r.Mood,
		Notes:        r.Notes,
		Achievements: r.Achievements,
		Challenges:   r.Challenges,
	}, true
}

func (a *DraftCacheAdapter) Set(ctx context.Context, key, field, value string) {
	a.drafts.Set(ctx, key, field, value)
}

func (a *DraftCacheAdapter) Clear(ctx context.Context, key string) {
	a.drafts.Clear(ctx, key)
}
