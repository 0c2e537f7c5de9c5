package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

// AnalysisCache persists vision analyses keyed by image-set hash.
// Implemented by storage.SQLiteStore.
type AnalysisCache interface {
	GetAnalysis(imageHash string) (*model.VisionAnalysis, error)
	PutAnalysis(imageHash string, analysis *model.VisionAnalysis) error
}

// CachedVisionStage wraps a VisionAnalyzer with a persistent cache so
// re-running the pipeline over the same photos costs nothing.
type CachedVisionStage struct {
	inner VisionAnalyzer
	cache AnalysisCache
}

// NewCachedVisionStage creates a caching wrapper around inner.
func NewCachedVisionStage(inner VisionAnalyzer, cache AnalysisCache) *CachedVisionStage {
	return &CachedVisionStage{inner: inner, cache: cache}
}

// hashImages creates a SHA256 hash from the image set.
// Includes a length prefix per image to prevent boundary collisions.
func hashImages(images []provider.ImageInput) string {
	h := sha256.New()
	for _, img := range images {
		binary.Write(h, binary.LittleEndian, int64(len(img.Data)))
		h.Write(img.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Analyze implements VisionAnalyzer with caching. Cache errors are logged
// and ignored; the analysis proceeds regardless.
func (c *CachedVisionStage) Analyze(ctx context.Context, images []provider.ImageInput, hint, language string) (*model.VisionAnalysis, error) {
	hash := hashImages(images)

	if c.cache != nil {
		cached, err := c.cache.GetAnalysis(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check analysis cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("analysis cache hit")
			return cached, nil
		}
	}

	analysis, err := c.inner.Analyze(ctx, images, hint, language)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.PutAnalysis(hash, analysis); err != nil {
			log.Warn().Err(err).Msg("failed to cache analysis")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision analysis")
		}
	}

	return analysis, nil
}
