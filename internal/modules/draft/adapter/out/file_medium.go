package out

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	draftout "tally/internal/modules/draft/port/out"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileMedium stores each key as one file under dir.
type FileMedium struct {
	dir string
}

func NewFileMedium(dir string) draftout.Medium {
	return &FileMedium{dir: dir}
}

func (m *FileMedium) Read(key string) (string, bool, error) {
	payload, err := os.ReadFile(m.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read draft: %w", err)
	}
	return string(payload), true, nil
}

func (m *FileMedium) Write(key, value string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	tmp, err := os.CreateTemp(m.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("create draft temp: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close draft: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit draft: %w", err)
	}
	return nil
}

func (m *FileMedium) Remove(key string) error {
	if err := os.Remove(m.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}
