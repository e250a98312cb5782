package in

import (
	"context"

	sessiondto "tally/internal/modules/session/dto"
	sessionin "tally/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, activityID, location string) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{ActivityID: activityID, Location: location})
}

func (h CLIHandler) Pause(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) End(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.End(ctx)
}

func (h CLIHandler) Discard(ctx context.Context) error {
	return h.usecase.Discard(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) Save(ctx context.Context, mood *int, notes, achievements, challenges string, photoPaths []string) (sessiondto.SaveOutput, error) {
	return h.usecase.Save(ctx, sessiondto.SaveInput{
		Reflection: sessiondto.ReflectionInput{Mood: mood, Notes: notes, Achievements: achievements, Challenges: challenges},
		PhotoPaths: photoPaths,
	})
}

func (h CLIHandler) SetDraftField(ctx context.Context, field, value string) error {
	return h.usecase.UpdateReflectionDraft(ctx, field, value)
}

func (h CLIHandler) GetDraft(ctx context.Context) (sessiondto.ReflectionDraftOutput, error) {
	return h.usecase.GetReflectionDraft(ctx)
}

func (h CLIHandler) List(ctx context.Context, input sessiondto.ListInput) ([]sessiondto.CompletedOutput, error) {
	return h.usecase.ListCompleted(ctx, input)
}
