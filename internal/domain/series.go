package domain

import "time"

// Analysis window: the full calendar year 2020 (a leap year, 366 days).
const (
	WindowStart = "2020-01-01"
	WindowEnd   = "2020-12-31"

	// DateLayout is the canonical date format used throughout the system.
	DateLayout = "2006-01-02"
)

// PricePoint is one calendar day of a normalized series. Volume is nil when
// the raw series carried no usable volume column.
type PricePoint struct {
	Date   string   `json:"date"`
	Price  float64  `json:"price"`
	Change float64  `json:"change"`
	Volume *float64 `json:"volume,omitempty"`
}

// PriceSeries is a normalized daily price series for one asset: exactly one
// point per calendar day in [WindowStart, WindowEnd], sorted ascending by
// date, no duplicates. It is read-only once produced by the normalizer.
type PriceSeries struct {
	Asset  string       `json:"asset"`
	Points []PricePoint `json:"points"`
}

// PriceOn returns the price for the given date, if present.
func (s PriceSeries) PriceOn(date string) (float64, bool) {
	for _, p := range s.Points {
		if p.Date == date {
			return p.Price, true
		}
	}
	return 0, false
}

// PricesFrom returns all prices from the given date (inclusive) to the end of
// the series. Dates in canonical format compare correctly as strings.
func (s PriceSeries) PricesFrom(date string) []float64 {
	prices := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Date >= date {
			prices = append(prices, p.Price)
		}
	}
	return prices
}

// WindowDates returns every calendar date in [WindowStart, WindowEnd] in
// ascending order.
func WindowDates() []string {
	start, _ := time.Parse(DateLayout, WindowStart)
	end, _ := time.Parse(DateLayout, WindowEnd)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
