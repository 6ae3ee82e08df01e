// Package history persists normalized daily price series in history.db.
package history

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/database"
	"github.com/mgarrido/folio/internal/domain"
)

// schema is the single source of truth for history.db. The primary key
// enforces the one-row-per-calendar-day invariant of normalized series.
const schema = `
CREATE TABLE IF NOT EXISTS daily_prices (
	asset  TEXT NOT NULL,
	date   TEXT NOT NULL,
	price  REAL NOT NULL,
	change REAL NOT NULL,
	volume REAL,
	PRIMARY KEY (asset, date)
);
CREATE INDEX IF NOT EXISTS idx_daily_prices_asset ON daily_prices(asset);
`

// Repository handles normalized series database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Init applies the schema.
func (r *Repository) Init() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply history schema: %w", err)
	}
	return nil
}

// SaveSeries replaces the stored series for the asset with the given one.
// The replace is transactional so readers never observe a partial series.
func (r *Repository) SaveSeries(s domain.PriceSeries) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM daily_prices WHERE asset = ?", s.Asset); err != nil {
			return fmt.Errorf("failed to clear series for %s: %w", s.Asset, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO daily_prices (asset, date, price, change, volume)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range s.Points {
			var volume interface{}
			if p.Volume != nil {
				volume = *p.Volume
			}
			if _, err := stmt.Exec(s.Asset, p.Date, p.Price, p.Change, volume); err != nil {
				return fmt.Errorf("failed to insert %s %s: %w", s.Asset, p.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info().
		Str("asset", s.Asset).
		Int("days", len(s.Points)).
		Msg("Saved normalized series")

	return nil
}

// GetSeries loads the normalized series for an asset, sorted ascending by
// date. A missing series fails with ErrMissingSeriesData.
func (r *Repository) GetSeries(asset string) (domain.PriceSeries, error) {
	rows, err := r.db.Query(`
		SELECT date, price, change, volume
		FROM daily_prices
		WHERE asset = ?
		ORDER BY date ASC
	`, asset)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("failed to query series for %s: %w", asset, err)
	}
	defer rows.Close()

	series := domain.PriceSeries{Asset: asset}
	for rows.Next() {
		var p domain.PricePoint
		var volume sql.NullFloat64
		if err := rows.Scan(&p.Date, &p.Price, &p.Change, &volume); err != nil {
			return domain.PriceSeries{}, fmt.Errorf("failed to scan price row for %s: %w", asset, err)
		}
		if volume.Valid {
			v := volume.Float64
			p.Volume = &v
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("error iterating series for %s: %w", asset, err)
	}

	if len(series.Points) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("%w: %s", domain.ErrMissingSeriesData, asset)
	}

	return series, nil
}

// HasSeries reports whether a normalized series is stored for the asset.
func (r *Repository) HasSeries(asset string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM daily_prices WHERE asset = ?", asset).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count series rows for %s: %w", asset, err)
	}
	return count > 0, nil
}

// Assets returns the acronyms that currently have a stored series.
func (r *Repository) Assets() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT asset FROM daily_prices ORDER BY asset")
	if err != nil {
		return nil, fmt.Errorf("failed to list stored assets: %w", err)
	}
	defer rows.Close()

	var assets []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
