package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgarrido/folio/internal/domain"
	"github.com/mgarrido/folio/internal/modules/history"
	"github.com/mgarrido/folio/internal/modules/normalize"
)

func writeRawFile(t *testing.T, dir string, asset domain.Asset, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, asset.SeriesFile), []byte(content), 0644))
}

func newTestImporter(t *testing.T, rawDir string, repo *history.Repository) *ImportService {
	t.Helper()
	log := zerolog.Nop()
	return NewImportService(rawDir, normalize.NewNormalizer(log), repo, log)
}

const rawStockCSV = `"Date","Price","Change %"
"2020-01-02","471.25","0.45%"
"2020-01-03","469.14","-0.45%"
`

func TestImportAsset_NormalizesAndStores(t *testing.T) {
	rawDir := t.TempDir()
	repo := testHistoryRepo(t)
	importer := newTestImporter(t, rawDir, repo)

	st, ok := domain.AssetByAcronym("ST")
	require.True(t, ok)
	writeRawFile(t, rawDir, st, rawStockCSV)

	require.NoError(t, importer.ImportAsset(st))

	series, err := repo.GetSeries("ST")
	require.NoError(t, err)
	assert.Len(t, series.Points, 366, "stored series should cover the full calendar year")
}

func TestImportAssets_MissingRawFile(t *testing.T) {
	importer := newTestImporter(t, t.TempDir(), testHistoryRepo(t))

	st, ok := domain.AssetByAcronym("ST")
	require.True(t, ok)

	err := importer.ImportAssets([]domain.Asset{st})
	require.ErrorIs(t, err, domain.ErrMissingSeriesData)
	assert.Contains(t, err.Error(), st.SeriesFile)
}

func TestImportAvailable_SkipsAbsentFiles(t *testing.T) {
	rawDir := t.TempDir()
	repo := testHistoryRepo(t)
	importer := newTestImporter(t, rawDir, repo)

	st, ok := domain.AssetByAcronym("ST")
	require.True(t, ok)
	ca, ok := domain.AssetByAcronym("CA")
	require.True(t, ok)
	writeRawFile(t, rawDir, st, rawStockCSV)
	writeRawFile(t, rawDir, ca, rawStockCSV)

	imported, err := importer.ImportAvailable()
	require.NoError(t, err)

	assert.Equal(t, []string{"ST", "CA"}, imported, "catalog order, absent assets skipped")

	ok, err = repo.HasSeries("ST")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.HasSeries("CB")
	require.NoError(t, err)
	assert.False(t, ok)
}
