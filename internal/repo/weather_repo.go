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

var ErrNoWeather = errors.New("no weather snapshot recorded")

type WeatherRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewWeatherRepo(pool *pgxpool.Pool, timeout time.Duration) *WeatherRepo {
	return &WeatherRepo{pool: pool, timeout: timeout}
}

func (r *WeatherRepo) Latest(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT city, temp_c, description, humidity, fetched_at
		FROM weather_snapshots
		WHERE city = $1
	`, city)

	var snap models.WeatherSnapshot
	if err := row.Scan(
		&snap.City,
		&snap.TempC,
		&snap.Description,
		&snap.Humidity,
		&snap.FetchedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoWeather
		}
		return nil, fmt.Errorf("get weather snapshot: %w", err)
	}
	return &snap, nil
}

func (r *WeatherRepo) Upsert(ctx context.Context, snap *models.WeatherSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO weather_snapshots (city, temp_c, description, humidity, fetched_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (city) DO UPDATE
		SET temp_c = EXCLUDED.temp_c,
		    description = EXCLUDED.description,
		    humidity = EXCLUDED.humidity,
		    fetched_at = NOW()
		RETURNING fetched_at
	`, snap.City, snap.TempC, snap.Description, snap.Humidity)

	if err := row.Scan(&snap.FetchedAt); err != nil {
		return fmt.Errorf("upsert weather snapshot: %w", err)
	}
	return nil
}
