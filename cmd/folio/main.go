// Package main is the one-shot batch pipeline: import raw scraped CSVs,
// enumerate allocations, compute metrics and export both tables as CSV.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/mgarrido/folio/internal/calculations"
	"github.com/mgarrido/folio/internal/config"
	"github.com/mgarrido/folio/internal/database"
	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/modules/allocations"
	"github.com/mgarrido/folio/internal/modules/catalog"
	"github.com/mgarrido/folio/internal/modules/history"
	"github.com/mgarrido/folio/internal/modules/metrics"
	"github.com/mgarrido/folio/internal/modules/normalize"
	"github.com/mgarrido/folio/internal/modules/results"
	"github.com/mgarrido/folio/internal/services"
	"github.com/mgarrido/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	assets := flag.String("assets", cfg.DefaultAssets, "space-separated asset acronyms (ST CB PB GO CA)")
	step := flag.Float64("step", float64(cfg.DefaultStep), "allocation step in percent (20) or as a fraction (0.2)")
	purchaseDate := flag.String("date", cfg.DefaultPurchaseDate, "purchase date (YYYY-MM-DD, within 2020)")
	investment := flag.Float64("investment", cfg.DefaultInvestment, "nominal investment amount")
	skipImport := flag.Bool("skip-import", false, "reuse stored series instead of re-importing raw CSVs")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	// A fractional step (0.2) means the same thing as its percent form (20).
	stepPct := *step
	if stepPct < 1.0 {
		stepPct *= 100
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	historyRepo := history.NewRepository(historyDB.Conn(), log)
	if err := historyRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	catalogSvc := catalog.NewService(log)
	normalizer := normalize.NewNormalizer(log)
	generator := allocations.NewGenerator(log)
	engine := metrics.NewEngine(log)
	importer := services.NewImportService(cfg.RawDataDir, normalizer, historyRepo, log)
	var cache *calculations.Cache // one-shot run, no cache
	analysis := services.NewAnalysisService(catalogSvc, historyRepo, generator, engine, cache, log)

	selected, err := catalogSvc.Select(*assets)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid asset selection")
	}

	if !*skipImport {
		if err := importer.ImportAssets(selected); err != nil {
			log.Fatal().Err(err).Msg("Failed to import raw series")
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	table, err := analysis.Allocations(*assets, int(stepPct))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate allocations")
	}
	allocationsPath := filepath.Join(cfg.OutputDir, "portfolio_allocations.csv")
	if err := results.WriteAllocationsCSV(allocationsPath, table); err != nil {
		log.Fatal().Err(err).Msg("Failed to write allocations table")
	}
	log.Info().Str("path", allocationsPath).Int("rows", len(table.Rows)).Msg("Wrote allocations table")

	result, err := analysis.Run(services.AnalysisRequest{
		Assets:       *assets,
		Step:         int(stepPct),
		PurchaseDate: *purchaseDate,
		Investment:   *investment,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	metricsPath := filepath.Join(cfg.OutputDir, "portfolio_metrics.csv")
	resultTable := domain.ResultTable{Columns: result.Columns, Records: result.Records}
	if err := results.WriteMetricsCSV(metricsPath, resultTable); err != nil {
		log.Fatal().Err(err).Msg("Failed to write metrics table")
	}
	log.Info().
		Str("path", metricsPath).
		Int("rows", len(result.Records)).
		Str("run_id", result.RunID).
		Msg("Wrote metrics table")
}
