package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/modules/session/domain"
	sessionout "tally/internal/modules/session/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
	"tally/internal/platform/sqlitedb"
)

const sessionDDL = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  activity_id TEXT NOT NULL,
  activity_name TEXT NOT NULL,
  activity_color TEXT,
  activity_icon TEXT,
  location TEXT,
  goal_id TEXT,
  target_minutes INTEGER,
  start_time TEXT NOT NULL,
  start_ms INTEGER NOT NULL,
  end_time TEXT NOT NULL,
  duration_seconds INTEGER NOT NULL,
  has_photos INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_ms);
CREATE TABLE IF NOT EXISTS reflections (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL UNIQUE REFERENCES sessions(id) ON DELETE CASCADE,
  mood INTEGER,
  notes TEXT,
  achievements TEXT,
  challenges TEXT
);
CREATE TABLE IF NOT EXISTS photos (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  ref TEXT NOT NULL,
  PRIMARY KEY (session_id, ref)
);
`

const selectCompleted = `
SELECT s.id, s.activity_id, s.activity_name, s.activity_color, s.activity_icon, s.location, s.goal_id,
       s.target_minutes, s.start_time, s.end_time, s.duration_seconds, s.has_photos,
       r.mood, r.notes, r.achievements, r.challenges
FROM sessions s
LEFT JOIN reflections r ON r.session_id = s.id
`

type SQLiteSessionRepository struct {
	db    *sql.DB
	idGen id.Generator
}

func NewSQLiteSessionRepository(ctx context.Context, db *sql.DB, idGen id.Generator) (*SQLiteSessionRepository, error) {
	if err := sqlitedb.Migrate(ctx, db, sessionDDL); err != nil {
		return nil, fmt.Errorf("create session tables: %w", err)
	}
	return &SQLiteSessionRepository{db: db, idGen: idGen}, nil
}

var _ sessionout.SessionRepository = (*SQLiteSessionRepository)(nil)

func (r *SQLiteSessionRepository) SaveSession(ctx context.Context, s domain.Completed) (string, error) {
	if s.ID == "" {
		s.ID = r.idGen.New()
	}
	var target sql.NullInt64
	if s.Draft.TargetMinutes != nil {
		target = sql.NullInt64{Int64: int64(*s.Draft.TargetMinutes), Valid: true}
	}
	const stmt = `
INSERT INTO sessions (id, activity_id, activity_name, activity_color, activity_icon, location, goal_id,
  target_minutes, start_time, start_ms, end_time, duration_seconds, has_photos)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
ON CONFLICT(id) DO NOTHING
`
	_, err := r.db.ExecContext(ctx, stmt,
		s.ID,
		s.Draft.ActivityID,
		s.Draft.ActivityName,
		s.Draft.ActivityColor,
		s.Draft.ActivityIcon,
		s.Draft.Location,
		s.Draft.GoalID,
		target,
		formatTime(s.Draft.StartTime),
		s.Draft.StartTime.UnixMilli(),
		formatTime(s.EndTime),
		s.DurationSeconds,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return s.ID, nil
}

func (r *SQLiteSessionRepository) AttachPhotos(ctx context.Context, sessionID string, photos []domain.UploadedPhoto) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attach photos: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, p := range photos {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO photos (session_id, name, ref) VALUES (?, ?, ?)`, sessionID, p.Name, p.Ref); err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `UPDATE sessions SET has_photos = 1 WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("flag session photos: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attach photos: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) SaveReflection(ctx context.Context, sessionID string, reflection domain.Reflection) (string, error) {
	var mood sql.NullInt64
	if reflection.Mood != nil {
		mood = sql.NullInt64{Int64: int64(*reflection.Mood), Valid: true}
	}
	reflectionID := r.idGen.New()
	const stmt = `
INSERT INTO reflections (id, session_id, mood, notes, achievements, challenges)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  mood=excluded.mood,
  notes=excluded.notes,
  achievements=excluded.achievements,
  challenges=excluded.challenges
RETURNING id;
`
	row := r.db.QueryRowContext(ctx, stmt, reflectionID, sessionID, mood, reflection.Notes, reflection.Achievements, reflection.Challenges)
	if err := row.Scan(&reflectionID); err != nil {
		return "", fmt.Errorf("upsert reflection: %w", err)
	}
	return reflectionID, nil
}

func (r *SQLiteSessionRepository) FindCompleted(ctx context.Context, sessionID string) (domain.Completed, error) {
	row := r.db.QueryRowContext(ctx, selectCompleted+`WHERE s.id = ?`, sessionID)
	s, err := scanCompleted(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Completed{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return s, err
}

func (r *SQLiteSessionRepository) ListCompleted(ctx context.Context, from, to time.Time) ([]domain.Completed, error) {
	lo, hi := int64(0), int64(1<<62)
	if !from.IsZero() {
		lo = from.UnixMilli()
	}
	if !to.IsZero() {
		hi = to.UnixMilli()
	}
	rows, err := r.db.QueryContext(ctx, selectCompleted+`WHERE s.start_ms >= ? AND s.start_ms < ? ORDER BY s.start_ms`, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	out := []domain.Completed{}
	for rows.Next() {
		s, err := scanCompleted(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompleted(row rowScanner) (domain.Completed, error) {
	var (
		s                               domain.Completed
		color, icon, location, goalID   sql.NullString
		target, mood                    sql.NullInt64
		start, end                      string
		hasPhotos                       int
		notes, achievements, challenges sql.NullString
	)
	err := row.Scan(&s.ID, &s.Draft.ActivityID, &s.Draft.ActivityName, &color, &icon, &location, &goalID,
		&target, &start, &end, &s.DurationSeconds, &hasPhotos,
		&mood, &notes, &achievements, &challenges)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Completed{}, err
		}
		return domain.Completed{}, fmt.Errorf("scan session: %w", err)
	}
	s.Draft.ActivityColor, s.Draft.ActivityIcon = color.String, icon.String
	s.Draft.Location, s.Draft.GoalID = location.String, goalID.String
	if target.Valid {
		t := int(target.Int64)
		s.Draft.TargetMinutes = &t
	}
	if s.Draft.StartTime, err = parseTime(start); err != nil {
		return domain.Completed{}, fmt.Errorf("session %s start_time: %w", s.ID, err)
	}
	if s.EndTime, err = parseTime(end); err != nil {
		return domain.Completed{}, fmt.Errorf("session %s end_time: %w", s.ID, err)
	}
	s.HasPhotos = hasPhotos != 0
	if mood.Valid {
		m := int(mood.Int64)
		s.Reflection.Mood = &m
	}
	s.Reflection.Notes, s.Reflection.Achievements, s.Reflection.Challenges = notes.String, achievements.String, challenges.String
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return t, nil
}
