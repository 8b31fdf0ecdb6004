package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paso-monitor-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoStatus is returned when the singleton pass_status row does not exist
// yet, i.e. the sync job has never committed a record.
var ErrNoStatus = errors.New("no pass status recorded")

type StatusRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewStatusRepo(pool *pgxpool.Pool, timeout time.Duration) *StatusRepo {
	return &StatusRepo{pool: pool, timeout: timeout}
}

func (r *StatusRepo) Get(ctx context.Context) (*models.PassStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT name, status, detail, source, updated_at
		FROM pass_status
		WHERE id = 1
	`)

	var status models.PassStatus
	if err := row.Scan(
		&status.Name,
		&status.Status,
		&status.Detail,
		&status.Source,
		&status.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoStatus
		}
		return nil, fmt.Errorf("get pass status: %w", err)
	}
	return &status, nil
}

// Upsert overwrites the singleton row in one statement; concurrent callers
// race last-write-wins, which is fine for idempotent overwrites.
func (r *StatusRepo) Upsert(ctx context.Context, status *models.PassStatus) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO pass_status (id, name, status, detail, source, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    status = EXCLUDED.status,
		    detail = EXCLUDED.detail,
		    source = EXCLUDED.source,
		    updated_at = NOW()
		RETURNING updated_at
	`, status.Name, status.Status, status.Detail, status.Source)

	if err := row.Scan(&status.UpdatedAt); err != nil {
		return fmt.Errorf("upsert pass status: %w", err)
	}
	return nil
}
