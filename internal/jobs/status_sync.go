// Package jobs holds the background tasks that keep the pass status and
// weather records fresh. Jobs absorb their own failures: a broken fetch turns
// into committed state, never into an error escaping to the scheduler.
package jobs

import (
	"context"
	"errors"
	"log/slog"

	"paso-monitor-server/internal/models"
	"paso-monitor-server/internal/repo"
)

type StatusSource interface {
	FetchStatus(ctx context.Context) (status, detail string, err error)
	URL() string
}

type StatusStore interface {
	Get(ctx context.Context) (*models.PassStatus, error)
	Upsert(ctx context.Context, status *models.PassStatus) error
}

type StatusSync struct {
	source   StatusSource
	store    StatusStore
	passName string
	log      *slog.Logger
}

func NewStatusSync(source StatusSource, store StatusStore, passName string, log *slog.Logger) *StatusSync {
	return &StatusSync{source: source, store: store, passName: passName, log: log}
}

// Run refreshes the singleton pass record and returns a snapshot of what was
// committed. Fetch failures become a record with StatusError and the error
// text as detail; Run itself never fails, so repeated scheduled invocations
// are always safe.
func (j *StatusSync) Run(ctx context.Context) models.PassStatus {
	status, detail, err := j.source.FetchStatus(ctx)
	if err != nil {
		status = models.StatusError
		detail = err.Error()
	}

	record := models.PassStatus{
		Name:   j.passName,
		Status: status,
		Detail: detail,
		Source: j.source.URL(),
	}

	// The configured name only applies when no record exists yet; an
	// existing record keeps the name it was created with.
	existing, getErr := j.store.Get(ctx)
	if getErr == nil {
		record.Name = existing.Name
	} else if !errors.Is(getErr, repo.ErrNoStatus) {
		j.log.Error("pass status read failed", "error", getErr)
	}

	if err := j.store.Upsert(ctx, &record); err != nil {
		j.log.Error("pass status upsert failed", "error", err)
		return record
	}

	j.log.Info("pass status synced",
		"name", record.Name,
		"status", record.Status,
		"detail", record.Detail,
	)
	return record
}
