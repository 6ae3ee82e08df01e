package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/calculations"
	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/modules/allocations"
	"github.com/mgarrido/folio/internal/modules/catalog"
	"github.com/mgarrido/folio/internal/modules/history"
	"github.com/mgarrido/folio/internal/modules/metrics"
)

// AnalysisRequest is one analysis run: which assets, at what granularity,
// bought when, with what nominal amount.
type AnalysisRequest struct {
	Assets       string  `json:"assets"`        // space-separated acronyms
	Step         int     `json:"step"`          // percent granularity
	PurchaseDate string  `json:"purchase_date"` // YYYY-MM-DD within the window
	Investment   float64 `json:"investment"`    // nominal; any positive value
}

// AnalysisResult is the computed metrics table plus run metadata.
type AnalysisResult struct {
	RunID    string                   `json:"run_id"`
	Columns  []string                 `json:"columns"`
	Records  []domain.PortfolioRecord `json:"records"`
	CacheHit bool                     `json:"cache_hit"`
	Elapsed  time.Duration            `json:"elapsed"`
}

// AnalysisService orchestrates a full analysis pass: resolve the asset
// selection, load normalized series, enumerate allocations, compute metrics.
// Computed tables are cached; a cache hit skips everything after validation.
type AnalysisService struct {
	catalog     *catalog.Service
	historyRepo *history.Repository
	generator   *allocations.Generator
	engine      *metrics.Engine
	cache       *calculations.Cache
	log         zerolog.Logger
}

// NewAnalysisService creates a new analysis service. cache may be nil, in
// which case every run computes fresh.
func NewAnalysisService(
	catalogSvc *catalog.Service,
	historyRepo *history.Repository,
	generator *allocations.Generator,
	engine *metrics.Engine,
	cache *calculations.Cache,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		catalog:     catalogSvc,
		historyRepo: historyRepo,
		generator:   generator,
		engine:      engine,
		cache:       cache,
		log:         log.With().Str("service", "analysis").Logger(),
	}
}

// Run executes one analysis request. All input validation happens before any
// computation; validation failures carry the domain taxonomy errors.
func (s *AnalysisService) Run(req AnalysisRequest) (*AnalysisResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	selected, err := s.catalog.Select(req.Assets)
	if err != nil {
		return nil, err
	}
	if err := metrics.ValidatePurchaseDate(req.PurchaseDate); err != nil {
		return nil, err
	}
	if err := s.catalog.ValidateSeries(selected, s.historyRepo); err != nil {
		return nil, err
	}

	acronyms := catalog.Acronyms(selected)

	if s.cache != nil {
		key := calculations.Key(acronyms, req.Step, req.PurchaseDate, req.Investment)
		var cached domain.ResultTable
		if s.cache.Get(key, &cached) {
			return &AnalysisResult{
				RunID:    runID,
				Columns:  cached.Columns,
				Records:  cached.Records,
				CacheHit: true,
				Elapsed:  time.Since(start),
			}, nil
		}
	}

	table, err := s.generator.Generate(selected, req.Step)
	if err != nil {
		return nil, err
	}

	series := make(map[string]domain.PriceSeries, len(selected))
	for _, asset := range selected {
		ps, err := s.historyRepo.GetSeries(asset.Acronym)
		if err != nil {
			return nil, err
		}
		series[asset.Acronym] = ps
	}

	result, err := s.engine.Compute(table, series, req.PurchaseDate, req.Investment)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		key := calculations.Key(acronyms, req.Step, req.PurchaseDate, req.Investment)
		if err := s.cache.Set(key, result, calculations.TTLResults); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache analysis result")
		}
	}

	s.log.Info().
		Str("run_id", runID).
		Int("rows", len(result.Records)).
		Int("step", req.Step).
		Str("purchase_date", req.PurchaseDate).
		Msg("Analysis complete")

	return &AnalysisResult{
		RunID:   runID,
		Columns: result.Columns,
		Records: result.Records,
		Elapsed: time.Since(start),
	}, nil
}

// Allocations generates just the allocation table for a request, without
// metrics. Used by the batch CLI to export portfolio_allocations.csv.
func (s *AnalysisService) Allocations(assetInput string, step int) (domain.AllocationTable, error) {
	selected, err := s.catalog.Select(assetInput)
	if err != nil {
		return domain.AllocationTable{}, err
	}
	return s.generator.Generate(selected, step)
}
