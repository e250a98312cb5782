package out

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	"tally/internal/platform/logging"
)

const photoCopyLimit = 4

// FilePhotoStore copies session photos under <root>/<sessionID>/. Files that
// fail to copy are left out of the result rather than failing the batch.
type FilePhotoStore struct {
	root string
}

func NewFilePhotoStore(root string) *FilePhotoStore {
	return &FilePhotoStore{root: root}
}

var _ sessionout.PhotoUploader = (*FilePhotoStore)(nil)

func (s *FilePhotoStore) Upload(ctx context.Context, files []domain.Photo, sessionID string) ([]domain.UploadedPhoto, error) {
	dir := filepath.Join(s.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}

	var (
		mu       sync.Mutex
		uploaded = make([]*domain.UploadedPhoto, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(photoCopyLimit)
	for i, f := range files {
		g.Go(func() error {
			dst := filepath.Join(dir, fmt.Sprintf("%02d-%s", i+1, filepath.Base(f.Name)))
			if err := copyFile(gctx, f.Path, dst); err != nil {
				logging.Logger.Warn("photo copy failed", "session_id", sessionID, "photo", f.Name, "error", err)
				return nil
			}
			mu.Lock()
			uploaded[i] = &domain.UploadedPhoto{SessionID: sessionID, Name: f.Name, Ref: dst}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.UploadedPhoto, 0, len(files))
	for _, p := range uploaded {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func copyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
