// Package results exports allocation and metrics tables as CSV, the format
// the charting side consumes.
package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mgarrido/folio/internal/domain"
)

// WriteAllocationsCSV writes the allocation table: one column per asset in
// canonical order, one row per valid weight tuple, no index column.
func WriteAllocationsCSV(path string, table domain.AllocationTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeAllocations(f, table); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeAllocations(w io.Writer, table domain.AllocationTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, weight := range row {
			record[i] = strconv.Itoa(weight)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSV writes the final metrics table: asset columns followed by
// RETURN and VOLAT, no index column.
func WriteMetricsCSV(path string, result domain.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeMetrics(f, result); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeMetrics(w io.Writer, result domain.ResultTable) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, result.Columns...), "RETURN", "VOLAT")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range result.Records {
		record := make([]string, 0, len(rec.Weights)+2)
		for _, weight := range rec.Weights {
			record = append(record, strconv.Itoa(weight))
		}
		record = append(record,
			formatMetric(rec.Return),
			formatMetric(rec.Volatility),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatMetric renders a rounded metric without trailing float noise.
func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
