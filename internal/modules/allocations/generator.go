// Package allocations enumerates discretized portfolio weight combinations.
package allocations

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mgarrido/folio/internal/domain"
)

// Generator enumerates all weight tuples at a fixed percentage granularity
// whose components sum to exactly 100.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates a new allocation generator
func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{
		log: log.With().Str("component", "allocations").Logger(),
	}
}

// Generate returns the allocation table for the selected assets and step.
// Conceptually: the Cartesian product of {0, step, 2*step, ...} (truncated at
// 100) over the N assets, filtered to tuples summing to 100, in descending
// lexicographic order. The recursion below walks candidate weights largest
// first, which yields exactly that order without materializing the full
// product; branches that already overshoot 100 or can no longer reach it are
// pruned.
//
// When 100 is not reachable (e.g. step 30 over 2 assets) the table is empty;
// that is a valid result, not an error. For a single asset the only row is
// the full 100% weight.
func (g *Generator) Generate(assets []domain.Asset, step int) (domain.AllocationTable, error) {
	if step <= 0 || step > 100 {
		return domain.AllocationTable{}, fmt.Errorf("%w: step must be in (0, 100], got %d", domain.ErrInvalidStep, step)
	}
	if len(assets) == 0 {
		return domain.AllocationTable{}, fmt.Errorf("%w: no assets selected", domain.ErrInvalidAssetSelection)
	}

	// Candidate weights in descending order: 100-truncated multiples of step.
	var weights []int
	for w := 0; w <= 100; w += step {
		weights = append([]int{w}, weights...)
	}

	columns := make([]string, len(assets))
	for i, a := range assets {
		columns[i] = a.Acronym
	}

	maxWeight := weights[0]
	var rows [][]int
	current := make([]int, len(assets))

	var walk func(pos, sum int)
	walk = func(pos, sum int) {
		if pos == len(assets) {
			if sum == 100 {
				row := make([]int, len(current))
				copy(row, current)
				rows = append(rows, row)
			}
			return
		}
		remaining := len(assets) - pos - 1
		for _, w := range weights {
			next := sum + w
			if next > 100 {
				continue
			}
			if next+remaining*maxWeight < 100 {
				// Even maxing out every later position cannot reach 100, and
				// smaller weights only make it worse.
				break
			}
			current[pos] = w
			walk(pos+1, next)
		}
	}
	walk(0, 0)

	g.log.Debug().
		Int("assets", len(assets)).
		Int("step", step).
		Int("rows", len(rows)).
		Msg("Generated allocations")

	return domain.AllocationTable{Columns: columns, Rows: rows}, nil
}
