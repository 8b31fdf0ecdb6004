package jobs

import (
	"context"
	"log/slog"

	"paso-monitor-server/internal/models"
)

type WeatherSource interface {
	Current(ctx context.Context, city string) (*models.WeatherSnapshot, error)
}

type WeatherStore interface {
	Upsert(ctx context.Context, snap *models.WeatherSnapshot) error
}

type WeatherSync struct {
	source WeatherSource
	store  WeatherStore
	city   string
	log    *slog.Logger
}

func NewWeatherSync(source WeatherSource, store WeatherStore, city string, log *slog.Logger) *WeatherSync {
	return &WeatherSync{source: source, store: store, city: city, log: log}
}

// Run refreshes the weather snapshot for the configured city. Failures are
// logged and swallowed; the previous snapshot stays in place.
func (j *WeatherSync) Run(ctx context.Context) {
	snap, err := j.source.Current(ctx, j.city)
	if err != nil {
		j.log.Error("weather fetch failed", "city", j.city, "error", err)
		return
	}

	if err := j.store.Upsert(ctx, snap); err != nil {
		j.log.Error("weather upsert failed", "city", j.city, "error", err)
		return
	}

	j.log.Info("weather synced", "city", snap.City, "temp_c", snap.TempC)
}
