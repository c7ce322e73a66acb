package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

const taskColumns = `id, title, description, created_at, start_time, deadline,
	is_completed, completed_at, progress, priority, is_public, tags, updated_at`

// Incoming fields replace the stored ones wholesale. updated_at never moves
// backwards even if the server clock does.
const upsertTaskSQL = `
	INSERT INTO tasks (owner_token, id, title, description, created_at, start_time, deadline,
		is_completed, completed_at, progress, priority, is_public, tags, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (owner_token, id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		created_at = EXCLUDED.created_at,
		start_time = EXCLUDED.start_time,
		deadline = EXCLUDED.deadline,
		is_completed = EXCLUDED.is_completed,
		completed_at = EXCLUDED.completed_at,
		progress = EXCLUDED.progress,
		priority = EXCLUDED.priority,
		is_public = EXCLUDED.is_public,
		tags = EXCLUDED.tags,
		updated_at = GREATEST(EXCLUDED.updated_at, tasks.updated_at)
	RETURNING ` + taskColumns

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) SyncBatch(ctx context.Context, owner string, tasks []model.Task, clock func() time.Time, since *time.Time) (time.Time, []model.Task, error) {
	var (
		now     time.Time
		changed []model.Task
	)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Syncs of one owner commit in the order of their stamps, so a
		// cursor handed out never skips rows committed later.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, owner); err != nil {
			return fmt.Errorf("lock owner: %w", err)
		}
		now = clock()

		for _, t := range tasks {
			t.UpdatedAt = now
			if _, err := upsertTask(ctx, tx, owner, t); err != nil {
				return fmt.Errorf("upsert task %s: %w", t.ID, err)
			}
		}

		if err := touchClient(ctx, tx, owner, now); err != nil {
			return fmt.Errorf("touch client: %w", err)
		}

		if since == nil {
			changed = []model.Task{}
			return nil
		}

		var err error
		changed, err = listChangedSince(ctx, tx, owner, *since)
		return err
	})
	if err != nil {
		return time.Time{}, nil, mapError(err)
	}
	return now, changed, nil
}

func (r *TaskRepo) Upsert(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	saved, err := upsertTask(ctx, r.pool, owner, t)
	return saved, mapError(err)
}

func (r *TaskRepo) Replace(ctx context.Context, owner string, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = $3, description = $4, start_time = $5, deadline = $6,
			is_completed = $7, completed_at = $8, progress = $9, priority = $10,
			is_public = $11, tags = $12, updated_at = GREATEST($13, updated_at)
		WHERE owner_token = $1 AND id = $2
		RETURNING `+taskColumns,
		owner, t.ID, t.Title, t.Description, t.StartTime, t.Deadline,
		t.IsCompleted, t.CompletedAt, t.Progress, int16(t.Priority),
		t.IsPublic, t.Tags, t.UpdatedAt,
	)
	saved, err := scanTask(row)
	return saved, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, owner, id string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_token = $1 AND id = $2
	`, owner, id)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, owner string, filter model.TaskFilter, limit int) ([]model.Task, error) {
	return queryTasks(ctx, r.pool, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_token = $1 AND ($2::boolean IS NULL OR is_completed = $2)
		ORDER BY updated_at DESC, id
		LIMIT $3
	`, owner, filter.Completed, limit)
}

func (r *TaskRepo) ListPublic(ctx context.Context, owner string, limit int) ([]model.Task, error) {
	return queryTasks(ctx, r.pool, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_token = $1 AND is_public
		ORDER BY is_completed, priority DESC, updated_at DESC
		LIMIT $2
	`, owner, limit)
}

func (r *TaskRepo) ListChangedSince(ctx context.Context, owner string, since time.Time) ([]model.Task, error) {
	return listChangedSince(ctx, r.pool, owner, since)
}

func listChangedSince(ctx context.Context, q querier, owner string, since time.Time) ([]model.Task, error) {
	return queryTasks(ctx, q, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_token = $1 AND updated_at > $2
		ORDER BY updated_at, id
	`, owner, since)
}

func upsertTask(ctx context.Context, q querier, owner string, t model.Task) (model.Task, error) {
	row := q.QueryRow(ctx, upsertTaskSQL,
		owner, t.ID, t.Title, t.Description, t.CreatedAt, t.StartTime, t.Deadline,
		t.IsCompleted, t.CompletedAt, t.Progress, int16(t.Priority),
		t.IsPublic, t.Tags, t.UpdatedAt,
	)
	return scanTask(row)
}

func queryTasks(ctx context.Context, q querier, sql string, args ...any) ([]model.Task, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t        model.Task
		priority int16
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.StartTime, &t.Deadline,
		&t.IsCompleted, &t.CompletedAt, &t.Progress, &priority, &t.IsPublic, &t.Tags, &t.UpdatedAt,
	)
	t.Priority = model.Priority(priority)
	return t, err
}
