package domain

// AllocationTable holds every valid weight combination for the selected
// assets. Columns are asset acronyms in canonical order; each row is the
// integer weights (percent) aligned to Columns, summing to exactly 100.
// Rows are in descending lexicographic order and the table is immutable
// once generated.
type AllocationTable struct {
	Columns []string `json:"columns"`
	Rows    [][]int  `json:"rows"`
}

// PortfolioRecord is one allocation row annotated with its computed metrics.
// Return is the percent change in portfolio value from the purchase date to
// the window end. Volatility is the coefficient of variation (population
// standard deviation over mean) of the daily portfolio value since the
// purchase date, as a percent. Both are rounded to 3 decimals.
type PortfolioRecord struct {
	Weights    []int   `json:"weights"`
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
}

// ResultTable is the final metrics table: one record per allocation row, in
// the same order the allocation table was generated.
type ResultTable struct {
	Columns []string          `json:"columns"`
	Records []PortfolioRecord `json:"records"`
}
