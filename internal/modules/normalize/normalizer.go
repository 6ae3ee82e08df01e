// Package normalize turns raw scraped price series into gap-free daily
// series over the analysis window. Raw series have rows only for trading
// days, percent changes as strings ("1.23%") and volumes with K/M suffixes
// or a "-" sentinel; normalized series have exactly one row per calendar
// day, numeric columns only.
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/utils"
)

// volumeSentinel marks a not-applicable volume in raw data.
const volumeSentinel = "-"

// rawDateLayouts are the date formats scrapers have been seen to emit.
// Time-of-day, when present, is dropped.
var rawDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"Jan 02, 2006",
	"01/02/2006",
}

// RawRow is one scraped row before normalization. Volume is the raw string
// ("5K", "2M", "-", ...) and is empty when the series has no volume column.
type RawRow struct {
	Date   string
	Price  string
	Change string
	Volume string
}

// RawSeries is a scraped series for one asset, possibly with calendar gaps.
type RawSeries struct {
	Asset     string
	HasVolume bool
	Rows      []RawRow
}

// Normalizer fills calendar gaps and converts raw columns to numeric values.
type Normalizer struct {
	log zerolog.Logger
}

// NewNormalizer creates a new calendar normalizer
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{
		log: log.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize produces a gap-free daily series over [WindowStart, WindowEnd]:
//  1. Dates are parsed to plain calendar days.
//  2. Change strings lose their "%" suffix and become numeric percents.
//  3. Volumes are converted (K -> x1e3, M -> x1e6). A column that is entirely
//     the "-" sentinel is dropped; otherwise sentinel rows are backfilled with
//     the mean of the numeric volumes, rounded to 3 decimals.
//  4. Dates absent from the raw series get synthesized rows carrying the mean
//     price and mean change of the known rows, each rounded to 2 decimals.
//  5. Rows are sorted ascending by date.
//
// A raw series that already covers every calendar day normalizes without
// synthesizing anything.
func (n *Normalizer) Normalize(raw RawSeries) (domain.PriceSeries, error) {
	if len(raw.Rows) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("%w: %s: raw series has no rows", domain.ErrSeriesParse, raw.Asset)
	}

	parsed := make([]domain.PricePoint, 0, len(raw.Rows))
	seen := make(map[string]bool, len(raw.Rows))

	for i, row := range raw.Rows {
		date, err := parseRawDate(row.Date)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: %s: row %d: date %q: %v",
				domain.ErrSeriesParse, raw.Asset, i, row.Date, err)
		}

		price, err := parseNumeric(row.Price)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: %s: row %d: price %q: %v",
				domain.ErrSeriesParse, raw.Asset, i, row.Price, err)
		}

		change, err := parseChange(row.Change)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: %s: row %d: change %q: %v",
				domain.ErrSeriesParse, raw.Asset, i, row.Change, err)
		}

		if seen[date] {
			n.log.Warn().Str("asset", raw.Asset).Str("date", date).Msg("Duplicate date in raw series, keeping first")
			continue
		}
		seen[date] = true

		parsed = append(parsed, domain.PricePoint{Date: date, Price: price, Change: change})
	}

	hasVolume := raw.HasVolume
	var volumeMean float64
	if hasVolume {
		volumes, allSentinel, err := n.convertVolumes(raw)
		if err != nil {
			return domain.PriceSeries{}, err
		}
		if allSentinel {
			// The column carries no information; drop it entirely.
			hasVolume = false
			n.log.Debug().Str("asset", raw.Asset).Msg("Volume column is all sentinel, dropping")
		} else {
			volumeMean = meanOfKnown(volumes)
			// Attach volumes to the parsed points, backfilling sentinels.
			// convertVolumes is aligned to raw.Rows; skip duplicates the same
			// way the parse loop did.
			idx := 0
			dedup := make(map[string]bool, len(parsed))
			for i := range raw.Rows {
				date, _ := parseRawDate(raw.Rows[i].Date)
				if dedup[date] {
					continue
				}
				dedup[date] = true
				v := volumeMean
				if volumes[i] != nil {
					v = *volumes[i]
				}
				vol := v
				parsed[idx].Volume = &vol
				idx++
			}
		}
	}

	// Synthesize rows for calendar days missing from the raw series.
	var priceSum, changeSum float64
	for _, p := range parsed {
		priceSum += p.Price
		changeSum += p.Change
	}
	meanPrice := utils.RoundTo(priceSum/float64(len(parsed)), 2)
	meanChange := utils.RoundTo(changeSum/float64(len(parsed)), 2)

	synthesized := 0
	for _, date := range domain.WindowDates() {
		if seen[date] {
			continue
		}
		point := domain.PricePoint{Date: date, Price: meanPrice, Change: meanChange}
		if hasVolume {
			vol := volumeMean
			point.Volume = &vol
		}
		parsed = append(parsed, point)
		synthesized++
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Date < parsed[j].Date })

	n.log.Info().
		Str("asset", raw.Asset).
		Int("raw_rows", len(raw.Rows)).
		Int("synthesized", synthesized).
		Bool("volume", hasVolume).
		Msg("Normalized series")

	return domain.PriceSeries{Asset: raw.Asset, Points: parsed}, nil
}

// convertVolumes converts every raw volume string to a numeric value.
// The returned slice is aligned to raw.Rows, nil marking sentinel entries.
func (n *Normalizer) convertVolumes(raw RawSeries) ([]*float64, bool, error) {
	volumes := make([]*float64, len(raw.Rows))
	allSentinel := true

	for i, row := range raw.Rows {
		value := strings.TrimSpace(row.Volume)
		if value == "" || value == volumeSentinel {
			continue
		}
		allSentinel = false

		v, err := parseVolume(value)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: row %d: volume %q: %v",
				domain.ErrSeriesParse, raw.Asset, i, row.Volume, err)
		}
		volumes[i] = &v
	}

	return volumes, allSentinel, nil
}

// meanOfKnown averages the non-sentinel volumes, rounded to 3 decimals.
func meanOfKnown(volumes []*float64) float64 {
	var sum float64
	count := 0
	for _, v := range volumes {
		if v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return utils.RoundTo(sum/float64(count), 3)
}

// parseRawDate parses a scraped date string into the canonical YYYY-MM-DD
// form, dropping any time-of-day component.
func parseRawDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range rawDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format")
}

// parseNumeric parses a price-like value, tolerating thousands separators.
func parseNumeric(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(value, 64)
}

// parseChange parses a percent-change string such as "1.23%" or "-0.5".
func parseChange(value string) (float64, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

// parseVolume converts a volume string with an optional K or M suffix.
func parseVolume(value string) (float64, error) {
	multiplier := 1.0
	switch {
	case strings.HasSuffix(value, "K"):
		multiplier = 1e3
		value = strings.TrimSuffix(value, "K")
	case strings.HasSuffix(value, "M"):
		multiplier = 1e6
		value = strings.TrimSuffix(value, "M")
	}

	v, err := parseNumeric(value)
	if err != nil {
		return 0, err
	}
	return v * multiplier, nil
}
