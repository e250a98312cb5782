package in

import (
	"context"

	"tally/internal/modules/draft/dto"
)

// Usecase is the reflection draft cache. Every method degrades to a no-op when
// the local medium is unavailable.
type Usecase interface {
	Get(ctx context.Context, key string) (dto.Reflection, bool)
	Set(ctx context.Context, key, field, value string)
	Clear(ctx context.Context, key string)
}
