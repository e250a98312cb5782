package out

import (
	"context"
	"time"

	sessiondto "tally/internal/modules/session/dto"
	sessionin "tally/internal/modules/session/port/in"
	"tally/internal/modules/stats/domain"
	statsout "tally/internal/modules/stats/port/out"
)

// SessionSource reads completed sessions through the session module.
type SessionSource struct {
	sessions sessionin.Usecase
}

func NewSessionSource(sessions sessionin.Usecase) *SessionSource {
	return &SessionSource{sessions: sessions}
}

var _ statsout.SessionSource = (*SessionSource)(nil)

func (s *SessionSource) ListSessions(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	completed, err := s.sessions.ListCompleted(ctx, sessiondto.ListInput{From: from, To: to})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(completed))
	for _, c := range completed {
		out = append(out, toSession(c))
	}
	return out, nil
}

func (s *SessionSource) FindSession(ctx context.Context, sessionID string) (domain.Session, error) {
	c, err := s.sessions.GetCompleted(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	return toSession(c), nil
}

func toSession(c sessiondto.CompletedOutput) domain.Session {
	return domain.Session{
		ID:              c.ID,
		ActivityID:      c.ActivityID,
		ActivityName:    c.ActivityName,
		ActivityColor:   c.ActivityColor,
		StartTime:       c.StartTime,
		DurationSeconds: c.DurationSeconds,
		TargetMinutes:   c.TargetMinutes,
	}
}
