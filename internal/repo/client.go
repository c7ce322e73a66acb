package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

type ClientRepo struct {
	pool *pgxpool.Pool
}

func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

func (r *ClientRepo) Get(ctx context.Context, owner string) (model.Client, error) {
	c := model.Client{OwnerToken: owner}
	err := r.pool.QueryRow(ctx, `
		SELECT created_at, last_sync_at FROM clients WHERE owner_token = $1
	`, owner).Scan(&c.CreatedAt, &c.LastSyncAt)
	return c, mapError(err)
}

// touchClient keeps created_at from the first sync and moves last_sync_at.
func touchClient(ctx context.Context, q querier, owner string, now time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO clients (owner_token, created_at, last_sync_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (owner_token) DO UPDATE SET last_sync_at = EXCLUDED.last_sync_at
	`, owner, now)
	return err
}
