package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
	"tally/internal/platform/logging"
)

// SaveResult summarises a save. Only the core record is required; photo and
// reflection failures are reported here instead of failing the save.
type SaveResult struct {
	SessionID        string
	PhotosFailed     bool
	ReflectionFailed bool
	PhotosStored     int
	Warnings         []error
}

// SavePipeline persists a completed session in four ordered steps:
// core record (fatal), photos (best effort), reflection (best effort), draft
// cache clear.
type SavePipeline struct {
	idGen  id.Generator
	repo   sessionout.SessionRepository
	photos sessionout.PhotoUploader
	drafts sessionout.ReflectionDraftCache
	flight singleflight.Group
}

func NewSavePipeline(idGen id.Generator, repo sessionout.SessionRepository, photos sessionout.PhotoUploader, drafts sessionout.ReflectionDraftCache) *SavePipeline {
	return &SavePipeline{idGen: idGen, repo: repo, photos: photos, drafts: drafts}
}

// Save runs the pipeline for the session identified by draftKey. Concurrent
// calls with the same key join the run already in flight.
func (p *SavePipeline) Save(ctx context.Context, draftKey string, session domain.Completed, photos []domain.Photo, reflection domain.Reflection) (SaveResult, error) {
	if err := reflection.Validate(); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	v, err, shared := p.flight.Do(draftKey, func() (any, error) {
		// A started save runs to completion even if the caller goes away.
		return p.run(context.WithoutCancel(ctx), draftKey, session, photos, reflection)
	})
	if shared {
		logging.Logger.Debug("joined in-flight save", "draft_key", draftKey)
	}
	if err != nil {
		return SaveResult{}, err
	}
	return v.(SaveResult), nil
}

func (p *SavePipeline) run(ctx context.Context, draftKey string, session domain.Completed, photos []domain.Photo, reflection domain.Reflection) (SaveResult, error) {
	if session.ID == "" && p.idGen != nil {
		session.ID = p.idGen.New()
	}
	session.HasPhotos = false
	session.Reflection = domain.Reflection{}

	sessionID, err := p.repo.SaveSession(ctx, session)
	if err != nil {
		logging.Logger.Error("session save failed", "draft_key", draftKey, "error", err)
		return SaveResult{}, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	result := SaveResult{SessionID: sessionID}

	if len(photos) > 0 {
		stored, err := p.uploadPhotos(ctx, sessionID, photos)
		result.PhotosStored = stored
		if err != nil {
			result.PhotosFailed = true
			result.Warnings = append(result.Warnings, err)
		}
	}

	if !reflection.IsEmpty() {
		if _, err := p.repo.SaveReflection(ctx, sessionID, reflection); err != nil {
			result.ReflectionFailed = true
			result.Warnings = append(result.Warnings, fmt.Errorf("%w: reflection: %w", apperrors.ErrSecondaryWrite, err))
		}
	}

	if p.drafts != nil {
		p.drafts.Clear(ctx, draftKey)
	}

	for _, w := range result.Warnings {
		logging.Logger.Warn("session saved with warnings", "session_id", sessionID, "warning", w)
	}
	logging.Logger.Info("session saved",
		"session_id", sessionID,
		"duration_seconds", session.DurationSeconds,
		"photos_failed", result.PhotosFailed,
		"reflection_failed", result.ReflectionFailed,
	)
	return result, nil
}

func (p *SavePipeline) uploadPhotos(ctx context.Context, sessionID string, photos []domain.Photo) (int, error) {
	if p.photos == nil {
		return 0, fmt.Errorf("%w: photos: no photo service configured", apperrors.ErrSecondaryWrite)
	}
	uploaded, err := p.photos.Upload(ctx, photos, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%w: photos: %w", apperrors.ErrSecondaryWrite, err)
	}
	stored := 0
	if len(uploaded) > 0 {
		if err := p.repo.AttachPhotos(ctx, sessionID, uploaded); err != nil {
			return 0, fmt.Errorf("%w: attach photos: %w", apperrors.ErrSecondaryWrite, err)
		}
		stored = len(uploaded)
	}
	if stored < len(photos) {
		return stored, fmt.Errorf("%w: photos: %d of %d stored", apperrors.ErrSecondaryWrite, stored, len(photos))
	}
	return stored, nil
}
