// Package services wires the catalog, normalizer, history store, allocation
// generator and metrics engine into the operations the API and CLI expose.
package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/modules/history"
	"github.com/mgarrido/folio/internal/modules/normalize"
)

// ImportService reads raw scraped CSVs, normalizes them and persists the
// resulting series.
type ImportService struct {
	rawDir      string
	normalizer  *normalize.Normalizer
	historyRepo *history.Repository
	log         zerolog.Logger
}

// NewImportService creates a new import service
func NewImportService(rawDir string, normalizer *normalize.Normalizer, historyRepo *history.Repository, log zerolog.Logger) *ImportService {
	return &ImportService{
		rawDir:      rawDir,
		normalizer:  normalizer,
		historyRepo: historyRepo,
		log:         log.With().Str("service", "import").Logger(),
	}
}

// ImportAssets imports the raw series for every given asset. A missing raw
// file is an error: the caller asked for exactly these assets.
func (s *ImportService) ImportAssets(assets []domain.Asset) error {
	for _, asset := range assets {
		if err := s.ImportAsset(asset); err != nil {
			return err
		}
	}
	return nil
}

// ImportAsset normalizes and stores one asset's raw series.
func (s *ImportService) ImportAsset(asset domain.Asset) error {
	path := filepath.Join(s.rawDir, asset.SeriesFile)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: raw file %s for %s: %v", domain.ErrMissingSeriesData, asset.SeriesFile, asset.Acronym, err)
	}

	raw, err := normalize.ReadRawCSV(path, asset.Acronym)
	if err != nil {
		return err
	}

	series, err := s.normalizer.Normalize(raw)
	if err != nil {
		return err
	}

	return s.historyRepo.SaveSeries(series)
}

// ImportAvailable imports every catalog asset whose raw file is present,
// skipping absent ones. Used by the scheduled refresh, where the scraper may
// not have produced all five files yet. Returns the acronyms imported.
func (s *ImportService) ImportAvailable() ([]string, error) {
	var imported []string
	for _, asset := range domain.Catalog {
		path := filepath.Join(s.rawDir, asset.SeriesFile)
		if _, err := os.Stat(path); err != nil {
			s.log.Debug().Str("asset", asset.Acronym).Str("file", asset.SeriesFile).Msg("Raw file absent, skipping")
			continue
		}
		if err := s.ImportAsset(asset); err != nil {
			return imported, err
		}
		imported = append(imported, asset.Acronym)
	}

	s.log.Info().Strs("assets", imported).Msg("Imported available raw series")
	return imported, nil
}
