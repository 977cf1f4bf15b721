package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each key as a row of clinic_store. Put upserts every row
// in a single transaction.
type Postgres struct {
	pool    *pgxpool.Pool
	profile string
}

func NewPostgres(pool *pgxpool.Pool, profile string) *Postgres {
	return &Postgres{pool: pool, profile: profile}
}

func (p *Postgres) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT key, value::text
		FROM clinic_store
		WHERE profile = $1 AND key = ANY($2)
	`, p.profile, keys)
	if err != nil {
		return nil, fmt.Errorf("query profile %s: %w", p.profile, err)
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var (
			key   string
			value string
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) Put(ctx context.Context, values map[string][]byte) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin profile write: %w", err)
	}
	defer tx.Rollback(ctx)

	for k, v := range values {
		_, err := tx.Exec(ctx, `
			INSERT INTO clinic_store (profile, key, value, updated_at)
			VALUES ($1, $2, $3::jsonb, now())
			ON CONFLICT (profile, key)
			DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, p.profile, k, string(v))
		if err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit profile write: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
