package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

func (r *FeedRepo) MostActiveOwner(ctx context.Context) (string, error) {
	var owner string
	err := r.pool.QueryRow(ctx, `
		SELECT owner_token FROM (
			SELECT owner_token, MAX(updated_at) AS touched FROM tasks GROUP BY owner_token
			UNION ALL
			SELECT owner_token, MAX(updated_at) FROM status_sources GROUP BY owner_token
			UNION ALL
			SELECT owner_token, MAX(updated_at) FROM posts GROUP BY owner_token
			UNION ALL
			SELECT owner_token, MAX(last_sync_at) FROM clients GROUP BY owner_token
		) activity
		ORDER BY touched DESC
		LIMIT 1
	`).Scan(&owner)
	return owner, mapError(err)
}
