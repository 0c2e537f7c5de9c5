package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvirta/productgen/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnalysisRoundtrip(t *testing.T) {
	store := newTestStore(t)

	analysis := &model.VisionAnalysis{
		ProductType: "Wireless Mouse",
		Brand:       "Logitech",
		Colors:      []string{"black", "white"},
		Condition:   "used",
		Confidence:  0.85,
	}
	require.NoError(t, store.PutAnalysis("hash-1", analysis))

	got, err := store.GetAnalysis("hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Wireless Mouse", got.ProductType)
	assert.Equal(t, []string{"black", "white"}, got.Colors)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
}

func TestGetAnalysisMissReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAnalysis("no-such-hash")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutAnalysisUpserts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutAnalysis("hash-1", &model.VisionAnalysis{ProductType: "Mouse"}))
	require.NoError(t, store.PutAnalysis("hash-1", &model.VisionAnalysis{ProductType: "Keyboard"}))

	got, err := store.GetAnalysis("hash-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Keyboard", got.ProductType)
}

func TestAnalysesAreIsolatedByHash(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.PutAnalysis("hash-1", &model.VisionAnalysis{ProductType: "Mouse"}))
	require.NoError(t, store.PutAnalysis("hash-2", &model.VisionAnalysis{ProductType: "Keyboard"}))

	a, err := store.GetAnalysis("hash-1")
	require.NoError(t, err)
	b, err := store.GetAnalysis("hash-2")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", a.ProductType)
	assert.Equal(t, "Keyboard", b.ProductType)
}
