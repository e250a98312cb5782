package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
	"tally/internal/platform/logging"
	"tally/internal/platform/markdown"
	"tally/internal/platform/slug"
	"tally/internal/platform/timebucket"
)

// VaultSessionRepository keeps one markdown note per completed session under
// <vault>/sessions/YYYY/MM/DD. The frontmatter is the record; the body is for
// humans and is regenerated on every write.
type VaultSessionRepository struct {
	vaultPath string
	loc       *time.Location
	idGen     id.Generator
	mu        sync.Mutex
}

func NewVaultSessionRepository(vaultPath string, loc *time.Location, idGen id.Generator) *VaultSessionRepository {
	return &VaultSessionRepository{vaultPath: vaultPath, loc: loc, idGen: idGen}
}

var _ sessionout.SessionRepository = (*VaultSessionRepository)(nil)

// SaveSession writes the note for s. A note already stored under s.ID is left
// untouched, since it may carry photos and a reflection from an earlier save.
func (r *VaultSessionRepository) SaveSession(_ context.Context, s domain.Completed) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = r.idGen.New()
	} else {
		existing, err := r.find(s.ID)
		if err != nil {
			return "", err
		}
		if existing != "" {
			return s.ID, nil
		}
	}

	day := timebucket.DayStart(s.Draft.StartTime, r.loc)
	dir := filepath.Join(r.sessionsDir(), day.Format("2006"), day.Format("01"), day.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	local := s.Draft.StartTime.In(day.Location())
	name := fmt.Sprintf("%s-%s-%s.md", local.Format("150405"), slug.Make(s.Draft.ActivityName), s.ID)
	if err := writeNote(filepath.Join(dir, name), s, nil); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *VaultSessionRepository) AttachPhotos(_ context.Context, sessionID string, photos []domain.UploadedPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, s, refs, err := r.load(sessionID)
	if err != nil {
		return err
	}
	for _, p := range photos {
		if !slices.Contains(refs, p.Ref) {
			refs = append(refs, p.Ref)
		}
	}
	s.HasPhotos = true
	return writeNote(path, s, refs)
}

func (r *VaultSessionRepository) SaveReflection(_ context.Context, sessionID string, reflection domain.Reflection) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, s, refs, err := r.load(sessionID)
	if err != nil {
		return "", err
	}
	s.Reflection = reflection
	if err := writeNote(path, s, refs); err != nil {
		return "", err
	}
	return sessionID + "#reflection", nil
}

func (r *VaultSessionRepository) FindCompleted(_ context.Context, sessionID string) (domain.Completed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, s, _, err := r.load(sessionID)
	return s, err
}

func (r *VaultSessionRepository) ListCompleted(_ context.Context, from, to time.Time) ([]domain.Completed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Completed{}
	err := r.walk(func(path string) (bool, error) {
		s, _, err := readNote(path)
		if err != nil {
			logging.Logger.Warn("skipping unreadable session note", "path", path, "error", err)
			return false, nil
		}
		start := s.Draft.StartTime
		if !from.IsZero() && start.Before(from) {
			return false, nil
		}
		if !to.IsZero() && !start.Before(to) {
			return false, nil
		}
		out = append(out, s)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Draft.StartTime.Before(out[j].Draft.StartTime)
	})
	return out, nil
}

func (r *VaultSessionRepository) sessionsDir() string {
	return filepath.Join(r.vaultPath, "sessions")
}

// find returns the note path stored under sessionID, or "" when there is none.
func (r *VaultSessionRepository) find(sessionID string) (string, error) {
	suffix := "-" + sessionID + ".md"
	found := ""
	err := r.walk(func(path string) (bool, error) {
		if strings.HasSuffix(path, suffix) {
			found = path
			return true, nil
		}
		return false, nil
	})
	return found, err
}

func (r *VaultSessionRepository) load(sessionID string) (string, domain.Completed, []string, error) {
	found, err := r.find(sessionID)
	if err != nil {
		return "", domain.Completed{}, nil, err
	}
	if found == "" {
		return "", domain.Completed{}, nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	s, refs, err := readNote(found)
	if err != nil {
		return "", domain.Completed{}, nil, err
	}
	return found, s, refs, nil
}

var errStopWalk = errors.New("stop walk")

// walk visits every session note; visit returns true to stop early.
func (r *VaultSessionRepository) walk(visit func(path string) (bool, error)) error {
	err := filepath.WalkDir(r.sessionsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		stop, err := visit(path)
		if err != nil {
			return err
		}
		if stop {
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return fmt.Errorf("walk session notes: %w", err)
	}
	return nil
}

func writeNote(path string, s domain.Completed, photoRefs []string) error {
	meta := map[string]any{
		"schema_version":   domain.SchemaVersion,
		"id":               s.ID,
		"activity_id":      s.Draft.ActivityID,
		"activity_name":    s.Draft.ActivityName,
		"start_time":       s.Draft.StartTime.Format(time.RFC3339Nano),
		"end_time":         s.EndTime.Format(time.RFC3339Nano),
		"duration_seconds": s.DurationSeconds,
		"has_photos":       s.HasPhotos,
	}
	optional := map[string]string{
		"activity_color": s.Draft.ActivityColor,
		"activity_icon":  s.Draft.ActivityIcon,
		"location":       s.Draft.Location,
		"goal_id":        s.Draft.GoalID,
		"notes":          s.Reflection.Notes,
		"achievements":   s.Reflection.Achievements,
		"challenges":     s.Reflection.Challenges,
	}
	for k, v := range optional {
		if v != "" {
			meta[k] = v
		}
	}
	if s.Draft.TargetMinutes != nil {
		meta["target_minutes"] = *s.Draft.TargetMinutes
	}
	if s.Reflection.Mood != nil {
		meta["mood"] = *s.Reflection.Mood
	}
	if len(photoRefs) > 0 {
		meta["photos"] = photoRefs
	}

	rendered, err := markdown.Note{Meta: meta, Body: noteBody(s, photoRefs)}.Render()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write session note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace session note: %w", err)
	}
	return nil
}

func noteBody(s domain.Completed, photoRefs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n- Duration: %d seconds\n", s.Draft.ActivityName, s.DurationSeconds)
	if s.Draft.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", s.Draft.Location)
	}
	if s.Reflection.Mood != nil {
		fmt.Fprintf(&b, "- Mood: %d/5\n", *s.Reflection.Mood)
	}
	sections := []struct{ title, text string }{
		{"Achievements", s.Reflection.Achievements},
		{"Challenges", s.Reflection.Challenges},
		{"Notes", s.Reflection.Notes},
	}
	for _, sec := range sections {
		if sec.text != "" {
			fmt.Fprintf(&b, "\n## %s\n\n%s\n", sec.title, sec.text)
		}
	}
	if len(photoRefs) > 0 {
		b.WriteString("\n## Photos\n\n")
		for _, ref := range photoRefs {
			fmt.Fprintf(&b, "- ![](%s)\n", ref)
		}
	}
	return b.String()
}

func readNote(path string) (domain.Completed, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Completed{}, nil, fmt.Errorf("read session note: %w", err)
	}
	note, err := markdown.Parse(string(raw))
	if err != nil {
		return domain.Completed{}, nil, fmt.Errorf("parse session note %s: %w", filepath.Base(path), err)
	}
	m := note.Meta
	start, err := metaTime(m, "start_time")
	if err != nil {
		return domain.Completed{}, nil, fmt.Errorf("session note %s: %w", filepath.Base(path), err)
	}
	end, err := metaTime(m, "end_time")
	if err != nil {
		return domain.Completed{}, nil, fmt.Errorf("session note %s: %w", filepath.Base(path), err)
	}
	s := domain.Completed{
		ID: markdown.String(m, "id"),
		Draft: domain.Draft{
			ActivityID:    markdown.String(m, "activity_id"),
			ActivityName:  markdown.String(m, "activity_name"),
			ActivityColor: markdown.String(m, "activity_color"),
			ActivityIcon:  markdown.String(m, "activity_icon"),
			Location:      markdown.String(m, "location"),
			GoalID:        markdown.String(m, "goal_id"),
			StartTime:     start,
		},
		EndTime:   end,
		HasPhotos: markdown.Bool(m, "has_photos"),
		Reflection: domain.Reflection{
			Notes:        markdown.String(m, "notes"),
			Achievements: markdown.String(m, "achievements"),
			Challenges:   markdown.String(m, "challenges"),
		},
	}
	if v, ok := markdown.Int(m, "duration_seconds"); ok {
		s.DurationSeconds = v
	}
	if v, ok := markdown.Int(m, "target_minutes"); ok {
		t := int(v)
		s.Draft.TargetMinutes = &t
	}
	if v, ok := markdown.Int(m, "mood"); ok {
		mood := int(v)
		s.Reflection.Mood = &mood
	}
	var refs []string
	if list, ok := m["photos"].([]any); ok {
		for _, item := range list {
			if ref, ok := item.(string); ok {
				refs = append(refs, ref)
			}
		}
	}
	return s, refs, nil
}

func metaTime(meta map[string]any, key string) (time.Time, error) {
	switch v := meta[key].(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", key, err)
		}
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("%s is missing", key)
	default:
		return time.Time{}, fmt.Errorf("%s has unexpected type %T", key, v)
	}
}
