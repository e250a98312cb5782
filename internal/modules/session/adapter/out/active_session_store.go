package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/logging"
)

const activeFileVersion = 1

type activeFile struct {
	Version int                  `json:"version"`
	SavedAt time.Time            `json:"saved_at"`
	Session domain.ActiveSession `json:"session"`
}

// FileActiveSessionStore keeps the in-flight session as one JSON file so a
// later process picks it up where the previous one stopped. A file that no
// longer decodes is moved aside to <path>.corrupt.
type FileActiveSessionStore struct {
	path string
	now  func() time.Time
}

func NewFileActiveSessionStore(path string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: path, now: time.Now}
}

func (s *FileActiveSessionStore) SaveActive(ctx context.Context, session domain.ActiveSession) error {
	if session.Status == domain.StatusIdle {
		return s.ClearActive(ctx)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create active session dir: %w", err)
	}
	payload, err := json.MarshalIndent(activeFile{
		Version: activeFileVersion,
		SavedAt: s.now().UTC(),
		Session: session,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.ActiveSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ActiveSession{}, apperrors.ErrNoActiveSession
		}
		return domain.ActiveSession{}, fmt.Errorf("read active session: %w", err)
	}

	var file activeFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return domain.ActiveSession{}, s.quarantine(err)
	}
	if file.Version != activeFileVersion {
		return domain.ActiveSession{}, s.quarantine(fmt.Errorf("unsupported version %d", file.Version))
	}
	active := file.Session
	if active.Status == "" || active.Status == domain.StatusIdle {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	if err := active.Status.Validate(); err != nil {
		return domain.ActiveSession{}, s.quarantine(err)
	}
	return active, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// quarantine moves an unreadable file out of the way. The session it held is
// lost, but the next start is not blocked by it.
func (s *FileActiveSessionStore) quarantine(cause error) error {
	logging.Logger.Warn("active session file unreadable, moving aside", "path", s.path, "error", cause)
	if err := os.Rename(s.path, s.path+".corrupt"); err != nil {
		return fmt.Errorf("quarantine active session: %w", errors.Join(cause, err))
	}
	return apperrors.ErrNoActiveSession
}
