package metrics

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/utils"
)

// seriesWith builds a full-window series whose price on each calendar day is
// produced by priceFor (indexed 0..365).
func seriesWith(asset string, priceFor func(i int) float64) domain.PriceSeries {
	dates := domain.WindowDates()
	points := make([]domain.PricePoint, len(dates))
	for i, date := range dates {
		points[i] = domain.PricePoint{Date: date, Price: priceFor(i)}
	}
	return domain.PriceSeries{Asset: asset, Points: points}
}

func constantSeries(asset string, price float64) domain.PriceSeries {
	return seriesWith(asset, func(int) float64 { return price })
}

func singleAssetTable(acronym string) domain.AllocationTable {
	return domain.AllocationTable{Columns: []string{acronym}, Rows: [][]int{{100}}}
}

func TestValidatePurchaseDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr error
	}{
		{"valid mid-year", "2020-06-15", nil},
		{"window start", "2020-01-01", nil},
		{"window end", "2020-12-31", nil},
		{"leap day", "2020-02-29", nil},
		{"impossible calendar date", "2020-02-30", domain.ErrInvalidDateFormat},
		{"garbage", "not-a-date", domain.ErrInvalidDateFormat},
		{"wrong layout", "15/06/2020", domain.ErrInvalidDateFormat},
		{"before window", "2019-12-31", domain.ErrDateOutOfRange},
		{"after window", "2021-01-01", domain.ErrDateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePurchaseDate(tt.date)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCompute_KnownTwoDayWindow(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Flat at 10 until the last day jumps to 12. Buying on Dec 30 holds the
	// position for exactly two days: values 10000 then 12000.
	series := map[string]domain.PriceSeries{
		"ST": seriesWith("ST", func(i int) float64 {
			if i == 365 {
				return 12
			}
			return 10
		}),
	}

	result, err := e.Compute(singleAssetTable("ST"), series, "2020-12-30", 10000)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.InDelta(t, 20.0, rec.Return, 1e-9)
	// mean 11000, population std dev 1000 -> 9.0909... -> 9.091
	assert.InDelta(t, 9.091, rec.Volatility, 1e-9)
}

func TestCompute_ConstantPriceHasZeroReturnAndVolatility(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	series := map[string]domain.PriceSeries{"CB": constantSeries("CB", 55.5)}

	result, err := e.Compute(singleAssetTable("CB"), series, "2020-01-01", 10000)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	assert.Zero(t, result.Records[0].Return)
	assert.Zero(t, result.Records[0].Volatility)
}

func TestCompute_FullAllocationMatchesAssetCV(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Linearly rising price: RETURN and VOLAT of a 100% allocation must equal
	// the asset's own return and coefficient of variation.
	rising := seriesWith("ST", func(i int) float64 { return 100 + float64(i) })
	series := map[string]domain.PriceSeries{"ST": rising}

	result, err := e.Compute(singleAssetTable("ST"), series, "2020-01-01", 10000)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	prices := rising.PricesFrom("2020-01-01")
	wantReturn := (prices[len(prices)-1] - prices[0]) / prices[0] * 100
	wantVolat := stat.PopStdDev(prices, nil) / stat.Mean(prices, nil) * 100

	assert.InDelta(t, utils.RoundTo(wantReturn, 3), result.Records[0].Return, 1e-9)
	assert.InDelta(t, utils.RoundTo(wantVolat, 3), result.Records[0].Volatility, 1e-9)
}

func TestCompute_ZeroWeightLegIsInert(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	rising := seriesWith("ST", func(i int) float64 { return 100 + float64(i) })
	wild := seriesWith("GO", func(i int) float64 { return 1 + float64(i%7)*50 })

	solo, err := e.Compute(singleAssetTable("ST"),
		map[string]domain.PriceSeries{"ST": rising}, "2020-01-01", 10000)
	require.NoError(t, err)

	paired, err := e.Compute(
		domain.AllocationTable{Columns: []string{"ST", "GO"}, Rows: [][]int{{100, 0}}},
		map[string]domain.PriceSeries{"ST": rising, "GO": wild},
		"2020-01-01", 10000)
	require.NoError(t, err)

	assert.Equal(t, solo.Records[0].Return, paired.Records[0].Return)
	assert.Equal(t, solo.Records[0].Volatility, paired.Records[0].Volatility)
}

func TestCompute_PurchaseOnWindowEnd(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	series := map[string]domain.PriceSeries{
		"ST": seriesWith("ST", func(i int) float64 { return 100 + float64(i) }),
	}

	result, err := e.Compute(singleAssetTable("ST"), series, "2020-12-31", 10000)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	// Single-point value series: both metrics are zero by convention.
	assert.Zero(t, result.Records[0].Return)
	assert.Zero(t, result.Records[0].Volatility)
}

func TestCompute_InvestmentInvariance(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	series := map[string]domain.PriceSeries{
		"ST": seriesWith("ST", func(i int) float64 { return 100 + float64(i) }),
		"CB": seriesWith("CB", func(i int) float64 { return 50 - float64(i)*0.05 }),
	}
	table := domain.AllocationTable{
		Columns: []string{"ST", "CB"},
		Rows:    [][]int{{100, 0}, {50, 50}, {0, 100}},
	}

	small, err := e.Compute(table, series, "2020-01-01", 5)
	require.NoError(t, err)
	large, err := e.Compute(table, series, "2020-01-01", 1000000)
	require.NoError(t, err)

	require.Len(t, large.Records, len(small.Records))
	for i := range small.Records {
		assert.InDelta(t, small.Records[i].Return, large.Records[i].Return, 1e-6)
		assert.InDelta(t, small.Records[i].Volatility, large.Records[i].Volatility, 1e-6)
	}
}

func TestCompute_RowOrderPreserved(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	series := map[string]domain.PriceSeries{
		"ST": constantSeries("ST", 10),
		"CB": constantSeries("CB", 20),
	}
	rows := [][]int{{100, 0}, {50, 50}, {0, 100}}
	table := domain.AllocationTable{Columns: []string{"ST", "CB"}, Rows: rows}

	result, err := e.Compute(table, series, "2020-01-01", 10000)
	require.NoError(t, err)

	require.Len(t, result.Records, len(rows))
	for i, row := range rows {
		assert.Equal(t, row, result.Records[i].Weights)
	}
}

func TestCompute_InputErrors(t *testing.T) {
	e := NewEngine(zerolog.Nop())
	full := map[string]domain.PriceSeries{"ST": constantSeries("ST", 10)}

	t.Run("invalid date", func(t *testing.T) {
		_, err := e.Compute(singleAssetTable("ST"), full, "2020-02-30", 10000)
		assert.ErrorIs(t, err, domain.ErrInvalidDateFormat)
	})

	t.Run("date out of window", func(t *testing.T) {
		_, err := e.Compute(singleAssetTable("ST"), full, "2019-06-15", 10000)
		assert.ErrorIs(t, err, domain.ErrDateOutOfRange)
	})

	t.Run("non-positive investment", func(t *testing.T) {
		_, err := e.Compute(singleAssetTable("ST"), full, "2020-06-15", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInvestment)
	})

	t.Run("missing series", func(t *testing.T) {
		_, err := e.Compute(singleAssetTable("GO"), full, "2020-06-15", 10000)
		assert.ErrorIs(t, err, domain.ErrMissingSeriesData)
	})

	t.Run("series missing purchase date", func(t *testing.T) {
		truncated := domain.PriceSeries{Asset: "ST", Points: []domain.PricePoint{
			{Date: "2020-12-31", Price: 10},
		}}
		_, err := e.Compute(singleAssetTable("ST"),
			map[string]domain.PriceSeries{"ST": truncated}, "2020-01-15", 10000)
		assert.ErrorIs(t, err, domain.ErrPurchaseDateNotFound)
	})
}
