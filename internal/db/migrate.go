package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		phone TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS pass_status (
		id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS weather_snapshots (
		city TEXT PRIMARY KEY,
		temp_c DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		humidity INTEGER NOT NULL DEFAULT 0,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Bootstrap creates the tables the server needs if they do not exist yet.
// The pass_status table is constrained to a single row.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	for _, stmt := range schema {
		ctxExec, cancel := context.WithTimeout(ctx, timeout)
		_, err := pool.Exec(ctxExec, stmt)
		cancel()
		if err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
