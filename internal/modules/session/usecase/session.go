package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tally/internal/modules/session/domain"
	sessiondto "tally/internal/modules/session/dto"
	sessionin "tally/internal/modules/session/port/in"
	sessionout "tally/internal/modules/session/port/out"
	"tally/internal/modules/session/service"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/logging"
)

type Interactor struct {
	svc      *service.SessionService
	pipeline *service.SavePipeline
	repo     sessionout.SessionRepository
	drafts   sessionout.ReflectionDraftCache
}

func NewInteractor(svc *service.SessionService, pipeline *service.SavePipeline, repo sessionout.SessionRepository, drafts sessionout.ReflectionDraftCache) sessionin.Usecase {
	return &Interactor{svc: svc, pipeline: pipeline, repo: repo, drafts: drafts}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.svc.Start(ctx, input.ActivityID, input.Location)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return i.activeOutput(ctx, active), nil
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.svc.Pause(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return i.activeOutput(ctx, active), nil
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.svc.Resume(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return i.activeOutput(ctx, active), nil
}

func (i *Interactor) End(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, err := i.svc.End(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return i.activeOutput(ctx, active), nil
}

func (i *Interactor) Discard(ctx context.Context) error {
	return i.svc.Discard(ctx)
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, elapsed, err := i.svc.Elapsed(ctx)
	if errors.Is(err, apperrors.ErrInvalidState) {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return toActiveOutput(active, elapsed), nil
}

// Save persists the ended session. Reflection values given in input win over
// the cached draft field by field.
func (i *Interactor) Save(ctx context.Context, input sessiondto.SaveInput) (sessiondto.SaveOutput, error) {
	completed, err := i.svc.Completed(ctx)
	if err != nil {
		return sessiondto.SaveOutput{}, err
	}
	key := domain.DraftKey(completed.Draft.ActivityID, completed.Draft.StartTime)

	reflection, err := i.mergeReflection(ctx, key, input.Reflection)
	if err != nil {
		return sessiondto.SaveOutput{}, err
	}
	photos := make([]domain.Photo, 0, len(input.PhotoPaths))
	for _, path := range input.PhotoPaths {
		if path = strings.TrimSpace(path); path != "" {
			photos = append(photos, domain.Photo{Name: filepath.Base(path), Path: path})
		}
	}

	result, err := i.pipeline.Save(ctx, key, completed, photos, reflection)
	if err != nil {
		return sessiondto.SaveOutput{}, err
	}
	out := sessiondto.SaveOutput{
		SessionID:        result.SessionID,
		PhotosFailed:     result.PhotosFailed,
		ReflectionFailed: result.ReflectionFailed,
		PhotosStored:     result.PhotosStored,
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	if err := i.svc.MarkSaved(ctx); err != nil {
		// Joined callers of the same save find the session already released.
		if !errors.Is(err, apperrors.ErrInvalidState) {
			logging.Logger.Error("release saved session", "session_id", result.SessionID, "error", err)
			out.Warnings = append(out.Warnings, "active session not released: "+err.Error())
		}
	}
	return out, nil
}

func (i *Interactor) UpdateReflectionDraft(ctx context.Context, field, value string) error {
	switch field {
	case domain.DraftFieldMood, domain.DraftFieldNotes, domain.DraftFieldAchievements, domain.DraftFieldChallenges:
	default:
		return fmt.Errorf("%w: unknown reflection field %q", apperrors.ErrInvalidInput, field)
	}
	active, err := i.svc.Active(ctx)
	if err != nil {
		return err
	}
	if i.drafts != nil {
		i.drafts.Set(ctx, domain.DraftKey(active.Draft.ActivityID, active.Draft.StartTime), field, value)
	}
	return nil
}

func (i *Interactor) GetReflectionDraft(ctx context.Context) (sessiondto.ReflectionDraftOutput, error) {
	active, err := i.svc.Active(ctx)
	if err != nil {
		return sessiondto.ReflectionDraftOutput{}, err
	}
	key := domain.DraftKey(active.Draft.ActivityID, active.Draft.StartTime)
	out := sessiondto.ReflectionDraftOutput{DraftKey: key}
	if i.drafts == nil {
		return out, nil
	}
	draft, ok := i.drafts.Get(ctx, key)
	if !ok {
		return out, nil
	}
	out.Found = true
	out.Mood, out.Notes, out.Achievements, out.Challenges = draft.Mood, draft.Notes, draft.Achievements, draft.Challenges
	return out, nil
}

func (i *Interactor) ListCompleted(ctx context.Context, input sessiondto.ListInput) ([]sessiondto.CompletedOutput, error) {
	sessions, err := i.repo.ListCompleted(ctx, input.From, input.To)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.CompletedOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toCompletedOutput(s))
	}
	return out, nil
}

func (i *Interactor) GetCompleted(ctx context.Context, sessionID string) (sessiondto.CompletedOutput, error) {
	s, err := i.repo.FindCompleted(ctx, sessionID)
	if err != nil {
		return sessiondto.CompletedOutput{}, err
	}
	return toCompletedOutput(s), nil
}

func (i *Interactor) mergeReflection(ctx context.Context, key string, input sessiondto.ReflectionInput) (domain.Reflection, error) {
	out := domain.Reflection{
		Mood:         input.Mood,
		Notes:        strings.TrimSpace(input.Notes),
		Achievements: strings.TrimSpace(input.Achievements),
		Challenges:   strings.TrimSpace(input.Challenges),
	}
	if i.drafts != nil {
		if draft, ok := i.drafts.Get(ctx, key); ok {
			if out.Mood == nil && strings.TrimSpace(draft.Mood) != "" {
				if mood, err := strconv.Atoi(strings.TrimSpace(draft.Mood)); err == nil && mood >= 1 && mood <= 5 {
					out.Mood = &mood
				} else {
					logging.Logger.Warn("ignoring unusable cached mood", "draft_key", key, "mood", draft.Mood)
				}
			}
			out.Notes = firstNonEmpty(out.Notes, draft.Notes)
			out.Achievements = firstNonEmpty(out.Achievements, draft.Achievements)
			out.Challenges = firstNonEmpty(out.Challenges, draft.Challenges)
		}
	}
	if err := out.Validate(); err != nil {
		return domain.Reflection{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return out, nil
}

// activeOutput reports a transition result with its elapsed time as of now.
func (i *Interactor) activeOutput(ctx context.Context, active domain.ActiveSession) sessiondto.ActiveSessionOutput {
	elapsed := active.DurationSeconds
	if _, current, err := i.svc.Elapsed(ctx); err == nil {
		elapsed = current
	}
	return toActiveOutput(active, elapsed)
}

func toActiveOutput(active domain.ActiveSession, elapsed int64) sessiondto.ActiveSessionOutput {
	return sessiondto.ActiveSessionOutput{
		Status:         string(active.Status),
		ActivityID:     active.Draft.ActivityID,
		ActivityName:   active.Draft.ActivityName,
		ActivityColor:  active.Draft.ActivityColor,
		ActivityIcon:   active.Draft.ActivityIcon,
		Location:       active.Draft.Location,
		GoalID:         active.Draft.GoalID,
		TargetMinutes:  active.Draft.TargetMinutes,
		StartedAt:      active.StartedAt,
		PausedAt:       active.PausedAt,
		EndedAt:        active.EndedAt,
		ElapsedSeconds: elapsed,
		PausedSeconds:  active.AccumulatedPauseSeconds(),
		DraftKey:       domain.DraftKey(active.Draft.ActivityID, active.Draft.StartTime),
	}
}

func toCompletedOutput(s domain.Completed) sessiondto.CompletedOutput {
	return sessiondto.CompletedOutput{
		ID:              s.ID,
		ActivityID:      s.Draft.ActivityID,
		ActivityName:    s.Draft.ActivityName,
		ActivityColor:   s.Draft.ActivityColor,
		Location:        s.Draft.Location,
		GoalID:          s.Draft.GoalID,
		TargetMinutes:   s.Draft.TargetMinutes,
		StartTime:       s.Draft.StartTime,
		EndTime:         s.EndTime,
		DurationSeconds: s.DurationSeconds,
		Mood:            s.Reflection.Mood,
		Notes:           s.Reflection.Notes,
		Achievements:    s.Reflection.Achievements,
		Challenges:      s.Reflection.Challenges,
		HasPhotos:       s.HasPhotos,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
