package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/calculations"
	"github.com/mgarrido/folio/internal/services"
)

// SeriesRefreshJob re-imports whatever raw CSV files the scraper has dropped
// since the last run, then purges the result cache since every previously
// computed table may now be stale.
type SeriesRefreshJob struct {
	importer *services.ImportService
	cache    *calculations.Cache
	log      zerolog.Logger
}

// NewSeriesRefreshJob creates a new series refresh job
func NewSeriesRefreshJob(importer *services.ImportService, cache *calculations.Cache, log zerolog.Logger) *SeriesRefreshJob {
	return &SeriesRefreshJob{
		importer: importer,
		cache:    cache,
		log:      log.With().Str("job", "series_refresh").Logger(),
	}
}

// Name implements Job
func (j *SeriesRefreshJob) Name() string {
	return "series_refresh"
}

// Run implements Job
func (j *SeriesRefreshJob) Run() error {
	imported, err := j.importer.ImportAvailable()
	if err != nil {
		return err
	}

	if len(imported) > 0 && j.cache != nil {
		if err := j.cache.Purge(); err != nil {
			j.log.Warn().Err(err).Msg("Failed to purge result cache after refresh")
		}
	}

	return nil
}
