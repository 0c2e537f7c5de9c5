package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

type memoryCache struct {
	entries map[string]*model.VisionAnalysis
	getErr  error
	putErr  error
	gets    int
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*model.VisionAnalysis)}
}

func (m *memoryCache) GetAnalysis(imageHash string) (*model.VisionAnalysis, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[imageHash], nil
}

func (m *memoryCache) PutAnalysis(imageHash string, analysis *model.VisionAnalysis) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[imageHash] = analysis
	return nil
}

func TestCachedVisionStageCachesRepeatedAnalysis(t *testing.T) {
	completer := &fakeCompleter{text: `{"productType": "Mouse", "confidence": 0.9}`}
	cache := newMemoryCache()
	stage := NewCachedVisionStage(NewVisionStage(completer), cache)

	first, err := stage.Analyze(context.Background(), testImages(), "", "en")
	require.NoError(t, err)
	second, err := stage.Analyze(context.Background(), testImages(), "", "en")
	require.NoError(t, err)

	assert.Equal(t, 1, completer.calls, "second call must be served from cache")
	assert.Equal(t, first.ProductType, second.ProductType)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, 2, cache.gets)
}

func TestCachedVisionStageDifferentImagesMiss(t *testing.T) {
	completer := &fakeCompleter{text: `{"productType": "Mouse"}`}
	stage := NewCachedVisionStage(NewVisionStage(completer), newMemoryCache())

	_, err := stage.Analyze(context.Background(), testImages(), "", "en")
	require.NoError(t, err)
	other := []provider.ImageInput{{Data: []byte("different"), MimeType: "image/png"}}
	_, err = stage.Analyze(context.Background(), other, "", "en")
	require.NoError(t, err)

	assert.Equal(t, 2, completer.calls)
}

func TestCachedVisionStageSurvivesCacheErrors(t *testing.T) {
	completer := &fakeCompleter{text: `{"productType": "Mouse"}`}
	cache := newMemoryCache()
	cache.getErr = fmt.Errorf("disk full")
	cache.putErr = fmt.Errorf("disk full")
	stage := NewCachedVisionStage(NewVisionStage(completer), cache)

	analysis, err := stage.Analyze(context.Background(), testImages(), "", "en")
	require.NoError(t, err, "cache failures must not fail the stage")
	assert.Equal(t, "Mouse", analysis.ProductType)
}

func TestCachedVisionStagePropagatesInnerFailure(t *testing.T) {
	wantErr := fmt.Errorf("providers down")
	cache := newMemoryCache()
	stage := NewCachedVisionStage(NewVisionStage(&fakeCompleter{err: wantErr}), cache)

	_, err := stage.Analyze(context.Background(), testImages(), "", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, cache.puts, "failed analyses are never cached")
}

func TestHashImagesBoundaryCollisions(t *testing.T) {
	// "ab"+"c" and "a"+"bc" concatenate identically; the length prefix must
	// keep their hashes apart.
	a := []provider.ImageInput{{Data: []byte("ab")}, {Data: []byte("c")}}
	b := []provider.ImageInput{{Data: []byte("a")}, {Data: []byte("bc")}}
	assert.NotEqual(t, hashImages(a), hashImages(b))

	assert.Equal(t, hashImages(a), hashImages(a), "hash is deterministic")
}
