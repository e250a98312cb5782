package in

import (
	"context"

	"tally/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.ActiveSessionOutput, error)
	Pause(ctx context.Context) (dto.ActiveSessionOutput, error)
	Resume(ctx context.Context) (dto.ActiveSessionOutput, error)
	End(ctx context.Context) (dto.ActiveSessionOutput, error)
	Discard(ctx context.Context) error
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
	Save(ctx context.Context, input dto.SaveInput) (dto.SaveOutput, error)
	UpdateReflectionDraft(ctx context.Context, field, value string) error
	GetReflectionDraft(ctx context.Context) (dto.ReflectionDraftOutput, error)
	ListCompleted(ctx context.Context, input dto.ListInput) ([]dto.CompletedOutput, error)
	GetCompleted(ctx context.Context, sessionID string) (dto.CompletedOutput, error)
}
