package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend keeps keys and list items in PostgreSQL, for deployments that
// have a database but no Redis. List positions follow insertion order.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresBackend{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_keys (
			key TEXT PRIMARY KEY,
			value TEXT,
			expires_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS memory_list_items (
			id BIGSERIAL PRIMARY KEY,
			key TEXT NOT NULL REFERENCES memory_keys (key) ON DELETE CASCADE,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memory_list_items_key_id ON memory_list_items (key, id);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (b *PostgresBackend) Name() string { return BackendPostgres }

func (b *PostgresBackend) Set(ctx context.Context, key, value string) error {
	err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM memory_list_items WHERE key=$1`, key); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO memory_keys (key, value, expires_at) VALUES ($1, $2, NULL)
			 ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, expires_at=NULL`,
			key, value,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value *string
	err := b.pool.QueryRow(ctx,
		`SELECT value FROM memory_keys
		 WHERE key=$1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM memory_keys WHERE key=$1`, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Append(ctx context.Context, key, value string) error {
	err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		if err := purgeExpired(ctx, tx, key); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO memory_keys (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, key); err != nil {
			return err
		}
		var holdsValue bool
		if err := tx.QueryRow(ctx,
			`SELECT value IS NOT NULL FROM memory_keys WHERE key=$1 FOR UPDATE`, key,
		).Scan(&holdsValue); err != nil {
			return err
		}
		if holdsValue {
			return ErrWrongType
		}
		_, err := tx.Exec(ctx, `INSERT INTO memory_list_items (key, value) VALUES ($1, $2)`, key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres append %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Trim(ctx context.Context, key string, start, stop int64) error {
	err := pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		if err := purgeExpired(ctx, tx, key); err != nil {
			return err
		}
		if err := lockKey(ctx, tx, key); err != nil {
			return err
		}
		var n int64
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM memory_list_items WHERE key=$1`, key).Scan(&n); err != nil {
			return err
		}
		lo, hi, ok := normalizeRange(start, stop, n)
		if !ok {
			_, err := tx.Exec(ctx, `DELETE FROM memory_keys WHERE key=$1`, key)
			return err
		}
		_, err := tx.Exec(ctx,
			`DELETE FROM memory_list_items WHERE key=$1 AND id NOT IN (
				SELECT id FROM memory_list_items WHERE key=$1 ORDER BY id OFFSET $2 LIMIT $3
			)`,
			key, lo, hi-lo+1,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres trim %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT i.value FROM memory_list_items i
		 JOIN memory_keys k ON k.key = i.key
		 WHERE i.key=$1 AND (k.expires_at IS NULL OR k.expires_at > now())
		 ORDER BY i.id`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres range %s: %w", key, err)
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list rows: %w", err)
	}

	lo, hi, ok := normalizeRange(start, stop, int64(len(items)))
	if !ok {
		return nil, nil
	}
	return items[lo : hi+1], nil
}

func (b *PostgresBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return b.Delete(ctx, key)
	}
	_, err := b.pool.Exec(ctx,
		`UPDATE memory_keys SET expires_at = now() + make_interval(secs => $2)
		 WHERE key=$1 AND (expires_at IS NULL OR expires_at > now())`,
		key, ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("postgres expire %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) bool {
	return b.pool.Ping(ctx) == nil
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

func purgeExpired(ctx context.Context, tx pgx.Tx, key string) error {
	_, err := tx.Exec(ctx, `DELETE FROM memory_keys WHERE key=$1 AND expires_at <= now()`, key)
	return err
}

// lockKey serializes list maintenance on one key for the rest of the transaction.
func lockKey(ctx context.Context, tx pgx.Tx, key string) error {
	_, err := tx.Exec(ctx, `SELECT 1 FROM memory_keys WHERE key=$1 FOR UPDATE`, key)
	return err
}
