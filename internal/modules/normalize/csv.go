package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mgarrido/folio/internal/domain"
)

// ReadRawCSV reads a scraped CSV file into a RawSeries. The header must
// contain Date and Price columns; "Change %" (or "Change") and "Vol." (or
// "Vol") are optional. Column order does not matter.
func ReadRawCSV(path, asset string) (RawSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawSeries{}, fmt.Errorf("%w: %s: %v", domain.ErrSeriesParse, asset, err)
	}
	defer f.Close()

	return readRaw(f, asset)
}

func readRaw(r io.Reader, asset string) (RawSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return RawSeries{}, fmt.Errorf("%w: %s: failed to read header: %v", domain.ErrSeriesParse, asset, err)
	}

	dateIdx, priceIdx, changeIdx, volumeIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Date":
			dateIdx = i
		case "Price":
			priceIdx = i
		case "Change %", "Change":
			changeIdx = i
		case "Vol.", "Vol":
			volumeIdx = i
		}
	}

	if dateIdx < 0 {
		return RawSeries{}, fmt.Errorf("%w: %s: missing Date column", domain.ErrSeriesParse, asset)
	}
	if priceIdx < 0 {
		return RawSeries{}, fmt.Errorf("%w: %s: missing Price column", domain.ErrSeriesParse, asset)
	}

	series := RawSeries{Asset: asset, HasVolume: volumeIdx >= 0}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RawSeries{}, fmt.Errorf("%w: %s: failed to read row: %v", domain.ErrSeriesParse, asset, err)
		}

		row := RawRow{Date: record[dateIdx], Price: record[priceIdx]}
		if changeIdx >= 0 {
			row.Change = record[changeIdx]
		}
		if volumeIdx >= 0 {
			row.Volume = record[volumeIdx]
		}
		series.Rows = append(series.Rows, row)
	}

	return series, nil
}
