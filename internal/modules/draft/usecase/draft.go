package usecase

import (
	"context"

	"tally/internal/modules/draft/domain"
	"tally/internal/modules/draft/dto"
	draftin "tally/internal/modules/draft/port/in"
	"tally/internal/modules/draft/service"
)

type Interactor struct {
	store *service.DraftStore
}

func NewInteractor(store *service.DraftStore) draftin.Usecase {
	return &Interactor{store: store}
}

func (i *Interactor) Get(_ context.Context, key string) (dto.Reflection, bool) {
	fields, ok := i.store.Get(key)
	if !ok {
		return dto.Reflection{}, false
	}
	return dto.Reflection{
		Mood:         fields[domain.FieldMood],
		Achievements: fields[domain.FieldAchievements],
		Challenges:   fields[domain.FieldChallenges],
		Notes:        fields[domain.FieldNotes],
	}, true
}

func (i *Interactor) Set(_ context.Context, key, field, value string) {
	i.store.Set(key, domain.Field(field), value)
}

func (i *Interactor) Clear(_ context.Context, key string) {
	i.store.Clear(key)
}
