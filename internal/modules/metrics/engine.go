// Package metrics computes return and volatility for every portfolio
// allocation over the analysis window.
package metrics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/utils"
)

// Engine values every allocation's holdings across the window and derives
// RETURN and VOLAT per row. Intermediate per-asset share/value arrays are
// scratch data, discarded once the row's metrics are computed.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new metrics engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "metrics").Logger(),
	}
}

// ValidatePurchaseDate checks that the purchase date is a well-formed,
// existing calendar date inside the analysis window. Malformed strings and
// impossible dates (2020-02-30) fail with ErrInvalidDateFormat; real dates
// outside the window fail with ErrDateOutOfRange.
func ValidatePurchaseDate(date string) error {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil || t.Format(domain.DateLayout) != date {
		return fmt.Errorf("%w: %q is not a valid YYYY-MM-DD date", domain.ErrInvalidDateFormat, date)
	}
	if date < domain.WindowStart || date > domain.WindowEnd {
		return fmt.Errorf("%w: %s is outside the analysis window %s..%s",
			domain.ErrDateOutOfRange, date, domain.WindowStart, domain.WindowEnd)
	}
	return nil
}

// Compute augments the allocation table with RETURN and VOLAT columns.
//
// Per asset and allocation row: shares bought at the purchase-date price with
// the row's weight share of the investment (zero weight buys zero shares,
// sidestepping division artifacts), then valued at every date from the
// purchase date through the window end. Row values summed across assets give
// the portfolio value series, from which:
//
//	RETURN = (last - first) / first * 100
//	VOLAT  = population std dev / mean * 100
//
// both rounded to 3 decimals. VOLAT is deliberately the unannualized
// coefficient of variation of portfolio value, not a log-return volatility.
// A purchase on the window's last day yields a single-point series: RETURN 0
// and VOLAT 0 by convention.
//
// The investment amount only scales intermediate values; RETURN and VOLAT
// are invariant to it. Row order is preserved from the input table.
func (e *Engine) Compute(
	table domain.AllocationTable,
	series map[string]domain.PriceSeries,
	purchaseDate string,
	investment float64,
) (domain.ResultTable, error) {
	if err := ValidatePurchaseDate(purchaseDate); err != nil {
		return domain.ResultTable{}, err
	}
	if investment <= 0 {
		return domain.ResultTable{}, fmt.Errorf("%w: got %v", domain.ErrInvalidInvestment, investment)
	}

	// Per-asset inputs, aligned to the table's columns.
	purchasePrices := make([]float64, len(table.Columns))
	prices := make([][]float64, len(table.Columns))
	days := 0

	for i, acronym := range table.Columns {
		s, ok := series[acronym]
		if !ok {
			return domain.ResultTable{}, fmt.Errorf("%w: no series for %s", domain.ErrMissingSeriesData, acronym)
		}

		pp, ok := s.PriceOn(purchaseDate)
		if !ok {
			// Normalization guarantees full calendar coverage, so a missing
			// row here is an upstream defect.
			return domain.ResultTable{}, fmt.Errorf("%w: asset %s has no row for %s",
				domain.ErrPurchaseDateNotFound, acronym, purchaseDate)
		}
		if _, ok := s.PriceOn(domain.WindowEnd); !ok {
			return domain.ResultTable{}, fmt.Errorf("%w: asset %s has no row for window end %s",
				domain.ErrPurchaseDateNotFound, acronym, domain.WindowEnd)
		}

		purchasePrices[i] = pp
		prices[i] = s.PricesFrom(purchaseDate)
		if i == 0 {
			days = len(prices[i])
		} else if len(prices[i]) != days {
			return domain.ResultTable{}, fmt.Errorf("%w: asset %s covers %d days, expected %d",
				domain.ErrPurchaseDateNotFound, acronym, len(prices[i]), days)
		}
	}

	start := time.Now()
	records := make([]domain.PortfolioRecord, 0, len(table.Rows))
	values := make([]float64, days)

	for _, row := range table.Rows {
		for d := range values {
			values[d] = 0
		}

		for i := range table.Columns {
			weight := row[i]
			if weight == 0 {
				continue
			}
			shares := investment * float64(weight) / 100 / purchasePrices[i]
			for d, price := range prices[i] {
				values[d] += shares * price
			}
		}

		ret := (values[days-1] - values[0]) / values[0] * 100

		volat := 0.0
		if mean := stat.Mean(values, nil); mean != 0 {
			volat = stat.PopStdDev(values, nil) / mean * 100
		}

		records = append(records, domain.PortfolioRecord{
			Weights:    append([]int(nil), row...),
			Return:     utils.RoundTo(ret, 3),
			Volatility: utils.RoundTo(volat, 3),
		})
	}

	e.log.Info().
		Int("rows", len(records)).
		Int("assets", len(table.Columns)).
		Int("days", days).
		Dur("elapsed", time.Since(start)).
		Str("purchase_date", purchaseDate).
		Msg("Computed portfolio metrics")

	return domain.ResultTable{Columns: table.Columns, Records: records}, nil
}
