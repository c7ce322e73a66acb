package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

type StatusRepo struct {
	pool *pgxpool.Pool
}

func NewStatusRepo(pool *pgxpool.Pool) *StatusRepo {
	return &StatusRepo{pool: pool}
}

// Publish replaces the live row of the source and appends the observation
// to the event log in the same transaction.
func (r *StatusRepo) Publish(ctx context.Context, owner string, src model.StatusSource, eventID string, now time.Time) (model.StatusSource, error) {
	var saved model.StatusSource

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO status_sources (owner_token, source, status, observed_at, expires_at, meta, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (owner_token, source) DO UPDATE SET
				status = EXCLUDED.status,
				observed_at = EXCLUDED.observed_at,
				expires_at = EXCLUDED.expires_at,
				meta = EXCLUDED.meta,
				updated_at = EXCLUDED.updated_at
			RETURNING source, status, observed_at, expires_at, meta
		`, owner, src.Source, src.Status, src.ObservedAt, src.ExpiresAt, nullableJSON(src.Meta), now).Scan(
			&saved.Source, &saved.Status, &saved.ObservedAt, &saved.ExpiresAt, &saved.Meta,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO status_events (id, owner_token, source, status, observed_at, expires_at, meta, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, eventID, owner, src.Source, src.Status, src.ObservedAt, src.ExpiresAt, nullableJSON(src.Meta), now)
		return err
	})
	return saved, mapError(err)
}

func (r *StatusRepo) ListSources(ctx context.Context, owner string) ([]model.StatusSource, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT source, status, observed_at, expires_at, meta
		FROM status_sources
		WHERE owner_token = $1
		ORDER BY observed_at DESC, source
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := make([]model.StatusSource, 0)
	for rows.Next() {
		var s model.StatusSource
		if err := rows.Scan(&s.Source, &s.Status, &s.ObservedAt, &s.ExpiresAt, &s.Meta); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *StatusRepo) ListEvents(ctx context.Context, owner, source string, limit int) ([]model.StatusEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, source, status, observed_at, expires_at, meta, created_at
		FROM status_events
		WHERE owner_token = $1 AND ($2 = '' OR source = $2)
		ORDER BY created_at DESC, observed_at DESC
		LIMIT $3
	`, owner, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.StatusEvent, 0, limit)
	for rows.Next() {
		var e model.StatusEvent
		if err := rows.Scan(&e.ID, &e.Source, &e.Status, &e.ObservedAt, &e.ExpiresAt, &e.Meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// nullableJSON stores an absent payload as SQL NULL rather than an empty
// jsonb value.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
