package history

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/folio/internal/database"
	"github.com/mgarrido/folio/internal/domain"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "history_test.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, repo.Init())
	return repo
}

func sampleSeries(asset string) domain.PriceSeries {
	vol := 5000.0
	return domain.PriceSeries{
		Asset: asset,
		Points: []domain.PricePoint{
			{Date: "2020-01-01", Price: 10.5, Change: 0.25, Volume: &vol},
			{Date: "2020-01-02", Price: 11.0, Change: 4.76},
		},
	}
}

func TestRepository_SaveAndGetSeries(t *testing.T) {
	repo := testRepository(t)

	require.NoError(t, repo.SaveSeries(sampleSeries("ST")))

	got, err := repo.GetSeries("ST")
	require.NoError(t, err)

	assert.Equal(t, "ST", got.Asset)
	require.Len(t, got.Points, 2)

	assert.Equal(t, "2020-01-01", got.Points[0].Date)
	assert.InDelta(t, 10.5, got.Points[0].Price, 1e-9)
	assert.InDelta(t, 0.25, got.Points[0].Change, 1e-9)
	require.NotNil(t, got.Points[0].Volume)
	assert.InDelta(t, 5000, *got.Points[0].Volume, 1e-9)

	assert.Equal(t, "2020-01-02", got.Points[1].Date)
	assert.Nil(t, got.Points[1].Volume, "missing volume should round-trip as nil")
}

func TestRepository_SaveSeriesReplaces(t *testing.T) {
	repo := testRepository(t)

	require.NoError(t, repo.SaveSeries(sampleSeries("ST")))

	replacement := domain.PriceSeries{
		Asset:  "ST",
		Points: []domain.PricePoint{{Date: "2020-06-01", Price: 99}},
	}
	require.NoError(t, repo.SaveSeries(replacement))

	got, err := repo.GetSeries("ST")
	require.NoError(t, err)
	require.Len(t, got.Points, 1)
	assert.Equal(t, "2020-06-01", got.Points[0].Date)
}

func TestRepository_GetSeriesMissing(t *testing.T) {
	repo := testRepository(t)

	_, err := repo.GetSeries("GO")
	assert.ErrorIs(t, err, domain.ErrMissingSeriesData)
}

func TestRepository_HasSeries(t *testing.T) {
	repo := testRepository(t)

	ok, err := repo.HasSeries("ST")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SaveSeries(sampleSeries("ST")))

	ok, err = repo.HasSeries("ST")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_Assets(t *testing.T) {
	repo := testRepository(t)

	require.NoError(t, repo.SaveSeries(sampleSeries("ST")))
	require.NoError(t, repo.SaveSeries(sampleSeries("CB")))

	assets, err := repo.Assets()
	require.NoError(t, err)
	assert.Equal(t, []string{"CB", "ST"}, assets)
}
