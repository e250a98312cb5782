package out

import (
	"context"
	"time"

	"tally/internal/modules/stats/domain"
)

// SessionSource reads completed sessions. ListSessions is half-open on
// [from, to) by start time; zero bounds are open.
type SessionSource interface {
	ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error)
	FindSession(ctx context.Context, sessionID string) (domain.Session, error)
}
