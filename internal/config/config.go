// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mgarrido/folio/internal/domain"
)

// Config holds application configuration
type Config struct {
	DataDir    string // Base directory for databases (history.db, cache.db)
	RawDataDir string // Directory where the scraper drops raw CSV files
	OutputDir  string // Directory for exported CSV tables

	Port     int
	LogLevel string
	DevMode  bool

	// Defaults for analysis requests; each can be overridden per request.
	DefaultAssets       string  // Space-separated acronyms, e.g. "ST CB PB GO CA"
	DefaultStep         int     // Allocation granularity in percent
	DefaultPurchaseDate string  // ISO date inside the analysis window
	DefaultInvestment   float64 // Nominal amount; scale factor only

	RefreshSchedule string // Cron spec for the series refresh job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		RawDataDir:          getEnv("FOLIO_RAW_DIR", filepath.Join(absDataDir, "raw")),
		OutputDir:           getEnv("FOLIO_OUTPUT_DIR", filepath.Join(absDataDir, "out")),
		Port:                getEnvAsInt("FOLIO_PORT", 8001),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DefaultAssets:       getEnv("FOLIO_ASSETS", "ST CB PB GO CA"),
		DefaultStep:         getEnvAsInt("FOLIO_STEP", 20),
		DefaultPurchaseDate: getEnv("FOLIO_PURCHASE_DATE", domain.WindowStart),
		DefaultInvestment:   getEnvAsFloat("FOLIO_INVESTMENT", 10000),
		RefreshSchedule:     getEnv("FOLIO_REFRESH_SCHEDULE", "@daily"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DefaultStep <= 0 || c.DefaultStep > 100 {
		return fmt.Errorf("%w: FOLIO_STEP must be in (0, 100], got %d", domain.ErrInvalidStep, c.DefaultStep)
	}
	if c.DefaultInvestment <= 0 {
		return fmt.Errorf("%w: FOLIO_INVESTMENT must be positive, got %v", domain.ErrInvalidInvestment, c.DefaultInvestment)
	}
	return nil
}

// HistoryDBPath returns the path of the normalized series database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CacheDBPath returns the path of the result cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
