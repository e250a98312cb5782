package out

import (
	"context"
	"time"

	"tally/internal/modules/session/domain"
)

// SessionRepository is the durable backend for completed sessions.
type SessionRepository interface {
	// SaveSession stores the core record and returns its id.
	SaveSession(ctx context.Context, session domain.Completed) (string, error)
	AttachPhotos(ctx context.Context, sessionID string, photos []domain.UploadedPhoto) error
	SaveReflection(ctx context.Context, sessionID string, reflection domain.Reflection) (string, error)
	FindCompleted(ctx context.Context, sessionID string) (domain.Completed, error)
	// ListCompleted returns sessions whose start lies in [from, to). Zero
	// bounds are open.
	ListCompleted(ctx context.Context, from, to time.Time) ([]domain.Completed, error)
}

// PhotoUploader stores photos for a session. Partial failure shows up as a
// shorter result; an error means nothing could be stored.
type PhotoUploader interface {
	Upload(ctx context.Context, files []domain.Photo, sessionID string) ([]domain.UploadedPhoto, error)
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

type GoalReader interface {
	FindGoal(ctx context.Context, goalID string) (domain.GoalTarget, error)
}

type ActivityReader interface {
	FindActivity(ctx context.Context, activityID string) (domain.ActivityInfo, error)
}

// ReflectionDraftCache is the local autosave of reflection fields.
type ReflectionDraftCache interface {
	Get(ctx context.Context, key string) (domain.ReflectionDraft, bool)
	Set(ctx context.Context, key, field, value string)
	Clear(ctx context.Context, key string)
}
