package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

const postColumns = `id, content, is_public, created_at, updated_at, deleted_at`

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, owner string, p model.Post) (model.Post, error) {
	created, err := insertPost(ctx, r.pool, owner, p)
	return created, mapError(err)
}

// CreateOnce serializes callers sharing owner and key on a transaction
// scoped advisory lock, so the key and its post are written together.
func (r *PostRepo) CreateOnce(ctx context.Context, owner, key string, p model.Post) (model.Post, error) {
	var out model.Post

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`, owner, key); err != nil {
			return err
		}

		var existingID int64
		err := tx.QueryRow(ctx, `
			SELECT resource_id FROM idempotency_keys WHERE owner_token = $1 AND key = $2
		`, owner, key).Scan(&existingID)
		if err == nil {
			out, err = scanPost(tx.QueryRow(ctx, `
				SELECT `+postColumns+` FROM posts WHERE owner_token = $1 AND id = $2
			`, owner, existingID))
			return err
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if out, err = insertPost(ctx, tx, owner, p); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO idempotency_keys (owner_token, key, resource_id, created_at) VALUES ($1, $2, $3, $4)
		`, owner, key, out.ID, out.CreatedAt)
		return err
	})
	return out, mapError(err)
}

func insertPost(ctx context.Context, q querier, owner string, p model.Post) (model.Post, error) {
	return scanPost(q.QueryRow(ctx, `
		INSERT INTO posts (owner_token, content, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+postColumns,
		owner, p.Content, p.IsPublic, p.CreatedAt,
	))
}

// Get returns soft-deleted posts as not found.
func (r *PostRepo) Get(ctx context.Context, owner string, id int64) (model.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE owner_token = $1 AND id = $2 AND deleted_at IS NULL
	`, owner, id)
	p, err := scanPost(row)
	return p, mapError(err)
}

func (r *PostRepo) List(ctx context.Context, owner string, limit int) ([]model.Post, error) {
	return r.query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE owner_token = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, owner, limit)
}

func (r *PostRepo) ListPublic(ctx context.Context, owner string, limit int) ([]model.Post, error) {
	return r.query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE owner_token = $1 AND deleted_at IS NULL AND is_public
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, owner, limit)
}

func (r *PostRepo) Update(ctx context.Context, owner string, id int64, upd model.PostUpdate, now time.Time) (model.Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET
			content = COALESCE($3, content),
			is_public = COALESCE($4, is_public),
			updated_at = $5
		WHERE owner_token = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+postColumns,
		owner, id, upd.Content, upd.IsPublic, now,
	)
	p, err := scanPost(row)
	return p, mapError(err)
}

func (r *PostRepo) SoftDelete(ctx context.Context, owner string, id int64, now time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE posts SET deleted_at = $3, updated_at = $3
		WHERE owner_token = $1 AND id = $2 AND deleted_at IS NULL
	`, owner, id, now)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *PostRepo) query(ctx context.Context, sql string, args ...any) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row pgx.Row) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Content, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}
