// Package main is the entry point for the portfolio analysis API server.
// It wires configuration, databases, repositories and services, starts the
// scheduled raw-series refresh and serves the HTTP API until a shutdown
// signal arrives.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgarrido/folio/internal/calculations"
	"github.com/mgarrido/folio/internal/config"
	"github.com/mgarrido/folio/internal/database"
	"github.com/mgarrido/folio/internal/modules/allocations"
	"github.com/mgarrido/folio/internal/modules/catalog"
	"github.com/mgarrido/folio/internal/modules/history"
	"github.com/mgarrido/folio/internal/modules/metrics"
	"github.com/mgarrido/folio/internal/modules/normalize"
	"github.com/mgarrido/folio/internal/scheduler"
	"github.com/mgarrido/folio/internal/server"
	"github.com/mgarrido/folio/internal/services"
	"github.com/mgarrido/folio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("raw_dir", cfg.RawDataDir).
		Int("port", cfg.Port).
		Msg("Starting folio server")

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	historyRepo := history.NewRepository(historyDB.Conn(), log)
	if err := historyRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	resultCache := calculations.NewCache(cacheDB.Conn(), log)
	if err := resultCache.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	catalogSvc := catalog.NewService(log)
	normalizer := normalize.NewNormalizer(log)
	generator := allocations.NewGenerator(log)
	engine := metrics.NewEngine(log)

	importer := services.NewImportService(cfg.RawDataDir, normalizer, historyRepo, log)
	analysis := services.NewAnalysisService(catalogSvc, historyRepo, generator, engine, resultCache, log)

	// Background refresh keeps history.db in sync with whatever the scraper
	// drops into the raw directory.
	sched := scheduler.New(log)
	refreshJob := scheduler.NewSeriesRefreshJob(importer, resultCache, log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Cfg:       cfg,
		HistoryDB: historyDB,
		CacheDB:   cacheDB,
		Analysis:  analysis,
		Importer:  importer,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
