package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/modules/catalog/domain"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/sqlitedb"
)

const catalogDDL = `
CREATE TABLE IF NOT EXISTS goals (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  deadline TEXT,
  weekday_target_hours REAL NOT NULL,
  weekend_target_hours REAL NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT,
  icon TEXT,
  goal_id TEXT,
  created_at TEXT NOT NULL
);
`

// SQLiteCatalogStore keeps activities and goals in the shared sqlite database.
type SQLiteCatalogStore struct {
	db *sql.DB
}

func NewSQLiteCatalogStore(ctx context.Context, db *sql.DB) (*SQLiteCatalogStore, error) {
	if err := sqlitedb.Migrate(ctx, db, catalogDDL); err != nil {
		return nil, fmt.Errorf("create catalog tables: %w", err)
	}
	return &SQLiteCatalogStore{db: db}, nil
}

func (s *SQLiteCatalogStore) SaveActivity(ctx context.Context, a domain.Activity) error {
	const stmt = `INSERT INTO activities (id, name, color, icon, goal_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt, a.ID, a.Name, a.Color, a.Icon, a.GoalID, formatTime(a.CreatedAt)); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindActivity(ctx context.Context, id string) (domain.Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, color, icon, goal_id, created_at FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Activity{}, fmt.Errorf("activity %s: %w", id, apperrors.ErrNotFound)
	}
	return a, err
}

func (s *SQLiteCatalogStore) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, icon, goal_id, created_at FROM activities ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	out := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteCatalogStore) DeleteActivity(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("activity %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteCatalogStore) SaveGoal(ctx context.Context, g domain.Goal) error {
	const stmt = `
INSERT INTO goals (id, title, deadline, weekday_target_hours, weekend_target_hours, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  deadline=excluded.deadline,
  weekday_target_hours=excluded.weekday_target_hours,
  weekend_target_hours=excluded.weekend_target_hours,
  status=excluded.status;
`
	_, err := s.db.ExecContext(ctx, stmt,
		g.ID, g.Title, formatTime(g.Deadline), g.WeekdayTargetHours, g.WeekendTargetHours, string(g.Status), formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindGoal(ctx context.Context, id string) (domain.Goal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, deadline, weekday_target_hours, weekend_target_hours, status, created_at FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Goal{}, fmt.Errorf("goal %s: %w", id, apperrors.ErrNotFound)
	}
	return g, err
}

func (s *SQLiteCatalogStore) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, deadline, weekday_target_hours, weekend_target_hours, status, created_at FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	out := []domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (domain.Activity, error) {
	var a domain.Activity
	var color, icon, goalID sql.NullString
	var created string
	if err := row.Scan(&a.ID, &a.Name, &color, &icon, &goalID, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, err
		}
		return domain.Activity{}, fmt.Errorf("scan activity: %w", err)
	}
	a.Color, a.Icon, a.GoalID = color.String, icon.String, goalID.String
	a.CreatedAt = parseTime(created)
	return a, nil
}

func scanGoal(row scanner) (domain.Goal, error) {
	var g domain.Goal
	var deadline sql.NullString
	var status, created string
	if err := row.Scan(&g.ID, &g.Title, &deadline, &g.WeekdayTargetHours, &g.WeekendTargetHours, &status, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Goal{}, err
		}
		return domain.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.Status = domain.GoalStatus(status)
	g.Deadline = parseTime(deadline.String)
	g.CreatedAt = parseTime(created)
	return g, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}
