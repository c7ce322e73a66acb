// Package localstore is the device-side task table and sync cursor, kept
// in an embedded SQLite database.
//
// The store is opened in WAL mode so readers keep seeing the previous
// state while a sync result is being applied. ApplySync writes the
// incoming tasks and the new cursor in one transaction.
package localstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/pkg/errors"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrInvalid  = errors.New("invalid task")
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT,
	created_at   INTEGER NOT NULL,
	start_time   INTEGER,
	deadline     INTEGER,
	is_completed INTEGER NOT NULL DEFAULT 0,
	completed_at INTEGER,
	progress     REAL NOT NULL DEFAULT 0,
	priority     INTEGER NOT NULL DEFAULT 2,
	is_public    INTEGER NOT NULL DEFAULT 0,
	tags         TEXT NOT NULL DEFAULT '',
	updated_at   INTEGER NOT NULL,
	reminder_at  INTEGER,
	local_rev    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sync_state (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

const cursorKey = "last_sync"

const taskColumns = `id, title, description, created_at, start_time, deadline,
	is_completed, completed_at, progress, priority, is_public, tags, updated_at, reminder_at, local_rev`

// Revisions maps task id to the local revision a snapshot saw.
type Revisions map[string]int64

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create store directory")
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "exec %q", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}

// Put records a local edit. It assigns an id to new tasks, stamps
// updated_at with the device clock and bumps the local revision. The
// reminder is left untouched.
func (s *Store) Put(ctx context.Context, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, errors.Wrap(ErrInvalid, "title is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == 0 {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return t, errors.Wrapf(ErrInvalid, "priority %d", t.Priority)
	}
	if t.Progress < 0 || t.Progress > 1 {
		return t, errors.Wrapf(ErrInvalid, "progress %v", t.Progress)
	}

	now := s.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if !t.IsCompleted {
		t.CompletedAt = nil
	} else if t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, created_at, start_time, deadline,
			is_completed, completed_at, progress, priority, is_public, tags, updated_at, local_rev)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			created_at = excluded.created_at,
			start_time = excluded.start_time,
			deadline = excluded.deadline,
			is_completed = excluded.is_completed,
			completed_at = excluded.completed_at,
			progress = excluded.progress,
			priority = excluded.priority,
			is_public = excluded.is_public,
			tags = excluded.tags,
			updated_at = excluded.updated_at,
			local_rev = tasks.local_rev + 1
	`, taskArgs(t)...)
	if err != nil {
		return t, errors.Wrapf(err, "put task %s", t.ID)
	}
	return t, nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, _, _, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, errors.Wrapf(err, "get task %s", id)
}

func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	tasks, _, err := s.Snapshot(ctx)
	return tasks, err
}

// Snapshot returns every task with the revision it had when read.
func (s *Store) Snapshot(ctx context.Context) ([]model.Task, Revisions, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY is_completed, priority DESC, created_at, id
	`)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list tasks")
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	revs := make(Revisions)
	for rows.Next() {
		t, _, rev, err := scanTask(rows)
		if err != nil {
			return nil, nil, errors.Wrap(err, "scan task")
		}
		tasks = append(tasks, t)
		revs[t.ID] = rev
	}
	return tasks, revs, errors.WithStack(rows.Err())
}

// Delete removes a task from this device only. The server keeps its copy.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete task %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetReminder sets the device-only reminder time. It is never sent to the
// server and survives sync.
func (s *Store) SetReminder(ctx context.Context, id string, at *time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET reminder_at = ? WHERE id = ?`, toMicros(at), id)
	if err != nil {
		return errors.Wrapf(err, "set reminder %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Reminder(ctx context.Context, id string) (*time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	_, reminder, _, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reminder, errors.WithStack(err)
}

// Cursor returns the server time of the last applied sync, or nil before
// the first one.
func (s *Store) Cursor(ctx context.Context) (*time.Time, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, cursorKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cursor")
	}
	return fromMicros(sql.NullInt64{Int64: v, Valid: true}), nil
}

// ApplySync writes tasks returned by the server and moves the cursor to
// serverTime, all in one transaction. A task edited locally after pushed
// was taken keeps the local version; it goes out with the next sync. A
// task deleted locally after that stays deleted. The cursor never moves
// backwards.
func (s *Store) ApplySync(ctx context.Context, tasks []model.Task, serverTime time.Time, pushed Revisions) (applied int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin apply")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range tasks {
		var rev int64
		err := tx.QueryRowContext(ctx, `SELECT local_rev FROM tasks WHERE id = ?`, t.ID).Scan(&rev)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Deleted here after the snapshot was taken.
			if _, ok := pushed[t.ID]; ok {
				continue
			}
		case err != nil:
			return 0, errors.Wrapf(err, "read revision %s", t.ID)
		default:
			if want, ok := pushed[t.ID]; !ok || want != rev {
				continue
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (id, title, description, created_at, start_time, deadline,
				is_completed, completed_at, progress, priority, is_public, tags, updated_at, local_rev)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				created_at = excluded.created_at,
				start_time = excluded.start_time,
				deadline = excluded.deadline,
				is_completed = excluded.is_completed,
				completed_at = excluded.completed_at,
				progress = excluded.progress,
				priority = excluded.priority,
				is_public = excluded.is_public,
				tags = excluded.tags,
				updated_at = excluded.updated_at
		`, taskArgs(t)...)
		if err != nil {
			return 0, errors.Wrapf(err, "apply task %s", t.ID)
		}
		applied++
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = MAX(sync_state.value, excluded.value)
	`, cursorKey, serverTime.UnixMicro())
	if err != nil {
		return 0, errors.Wrap(err, "advance cursor")
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit apply")
	}
	return applied, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, *time.Time, int64, error) {
	var (
		t                                      model.Task
		description                            sql.NullString
		created, updated                       int64
		start, deadline, completedAt, reminder sql.NullInt64
		completed, public                      bool
		priority, rev                          int64
	)
	err := row.Scan(
		&t.ID, &t.Title, &description, &created, &start, &deadline,
		&completed, &completedAt, &t.Progress, &priority, &public, &t.Tags, &updated, &reminder, &rev,
	)
	if err != nil {
		return t, nil, 0, err
	}

	if description.Valid {
		t.Description = &description.String
	}
	t.CreatedAt = time.UnixMicro(created).UTC()
	t.UpdatedAt = time.UnixMicro(updated).UTC()
	t.StartTime = fromMicros(start)
	t.Deadline = fromMicros(deadline)
	t.CompletedAt = fromMicros(completedAt)
	t.IsCompleted = completed
	t.IsPublic = public
	t.Priority = model.Priority(priority)
	return t, fromMicros(reminder), rev, nil
}

func taskArgs(t model.Task) []any {
	return []any{
		t.ID, t.Title, t.Description, t.CreatedAt.UnixMicro(), toMicros(t.StartTime), toMicros(t.Deadline),
		t.IsCompleted, toMicros(t.CompletedAt), t.Progress, int64(t.Priority), t.IsPublic, t.Tags, t.UpdatedAt.UnixMicro(),
	}
}

func toMicros(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMicro()
}

func fromMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMicro(v.Int64).UTC()
	return &t
}
