package allocations

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/folio/internal/domain"
)

func testAssets(n int) []domain.Asset {
	return domain.Catalog[:n]
}

func TestGenerate_SumInvariant(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	table, err := g.Generate(testAssets(5), 20)
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)

	for _, row := range table.Rows {
		sum := 0
		for _, w := range row {
			sum += w
		}
		assert.Equal(t, 100, sum, "row %v should sum to 100", row)
	}
}

func TestGenerate_TwoAssetsStep50(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	table, err := g.Generate(testAssets(2), 50)
	require.NoError(t, err)

	assert.Equal(t, []string{"ST", "CB"}, table.Columns)
	assert.Equal(t, [][]int{
		{100, 0},
		{50, 50},
		{0, 100},
	}, table.Rows, "rows should be exactly the three valid splits in descending lexicographic order")
}

func TestGenerate_DescendingLexicographicOrder(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	table, err := g.Generate(testAssets(3), 25)
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)

	for i := 1; i < len(table.Rows); i++ {
		assert.True(t, lexGreater(table.Rows[i-1], table.Rows[i]),
			"row %v should come before %v", table.Rows[i-1], table.Rows[i])
	}
}

func lexGreater(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func TestGenerate_CountMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name   string
		assets int
		step   int
	}{
		{"two assets step 20", 2, 20},
		{"three assets step 25", 3, 25},
		{"four assets step 50", 4, 50},
		{"five assets step 20", 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(zerolog.Nop())

			table, err := g.Generate(testAssets(tt.assets), tt.step)
			require.NoError(t, err)

			assert.Equal(t, bruteForceCount(tt.assets, tt.step), len(table.Rows))
		})
	}
}

// bruteForceCount recounts valid tuples by walking the full Cartesian product.
func bruteForceCount(n, step int) int {
	var weights []int
	for w := 0; w <= 100; w += step {
		weights = append(weights, w)
	}

	count := 0
	var walk func(pos, sum int)
	walk = func(pos, sum int) {
		if pos == n {
			if sum == 100 {
				count++
			}
			return
		}
		for _, w := range weights {
			walk(pos+1, sum+w)
		}
	}
	walk(0, 0)
	return count
}

func TestGenerate_UnreachableSumYieldsEmptyTable(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	// 30+30, 30+60, 60+60... none of these reach exactly 100.
	table, err := g.Generate(testAssets(2), 30)
	require.NoError(t, err)

	assert.Empty(t, table.Rows)
	assert.Equal(t, []string{"ST", "CB"}, table.Columns)
}

func TestGenerate_SingleAsset(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	table, err := g.Generate(testAssets(1), 20)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{100}}, table.Rows)
}

func TestGenerate_InvalidStep(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	for _, step := range []int{0, -5, 101} {
		_, err := g.Generate(testAssets(2), step)
		assert.ErrorIs(t, err, domain.ErrInvalidStep, "step %d should be rejected", step)
	}
}

func TestGenerate_NoAssets(t *testing.T) {
	g := NewGenerator(zerolog.Nop())

	_, err := g.Generate(nil, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidAssetSelection)
}
