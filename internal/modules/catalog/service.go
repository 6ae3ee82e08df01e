// Package catalog validates asset selections against the static asset
// catalog and checks that normalized series exist for every selected asset.
package catalog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/domain"
)

// SeriesStore is the subset of the history repository the catalog needs to
// verify that a normalized series is present for an asset.
type SeriesStore interface {
	HasSeries(asset string) (bool, error)
}

// Service resolves user asset selections into catalog views.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new catalog service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "catalog").Logger(),
	}
}

// Select parses a space-separated list of acronym tokens and returns the
// matching catalog entries, deduplicated, in canonical order (ST, CB, PB,
// GO, CA). Input order is deliberately not preserved: canonical order drives
// column ordering everywhere downstream. Unknown tokens are dropped; an empty
// result is an error.
func (s *Service) Select(input string) ([]domain.Asset, error) {
	requested := make(map[string]bool)
	for _, token := range strings.Fields(input) {
		requested[token] = true
	}

	// Filter against the catalog instead of mutating it: the static catalog
	// is shared config and stays untouched.
	var selected []domain.Asset
	for _, asset := range domain.Catalog {
		if requested[asset.Acronym] {
			selected = append(selected, asset)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no recognized acronyms in %q", domain.ErrInvalidAssetSelection, input)
	}

	s.log.Debug().
		Int("selected", len(selected)).
		Str("input", input).
		Msg("Resolved asset selection")

	return selected, nil
}

// ValidateSeries checks that a normalized series exists for every selected
// asset, failing with the first missing asset named.
func (s *Service) ValidateSeries(assets []domain.Asset, store SeriesStore) error {
	for _, asset := range assets {
		ok, err := store.HasSeries(asset.Acronym)
		if err != nil {
			return fmt.Errorf("failed to check series for %s: %w", asset.Acronym, err)
		}
		if !ok {
			return fmt.Errorf("%w: no normalized series for %s (%s)",
				domain.ErrMissingSeriesData, asset.Acronym, asset.SeriesFile)
		}
	}
	return nil
}

// Acronyms returns the acronyms of the given assets, preserving order.
func Acronyms(assets []domain.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Acronym
	}
	return out
}
