package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

// Defaults used when the vision response cannot be parsed. An unparsable
// response degrades to a low-confidence generic result, it never fails the
// stage.
const (
	defaultProductType = "Unknown Product"
	defaultConfidence  = 0.5
)

// VisionAnalyzer turns product images into a structured analysis. Implemented
// by VisionStage and its caching wrapper.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, images []provider.ImageInput, hint, language string) (*model.VisionAnalysis, error)
}

// VisionStage converts raw product images into a VisionAnalysis via the
// failover orchestrator, restricted to vision-capable providers.
type VisionStage struct {
	completer Completer
}

// NewVisionStage creates the vision stage over the given completer.
func NewVisionStage(completer Completer) *VisionStage {
	return &VisionStage{completer: completer}
}

// visionPayload mirrors the JSON shape the prompt asks for. Confidence is
// decoded leniently so junk values don't discard the whole document.
type visionPayload struct {
	ProductType         string    `json:"productType"`
	Brand               string    `json:"brand"`
	Model               string    `json:"model"`
	Colors              []string  `json:"colors"`
	Materials           []string  `json:"materials"`
	Style               string    `json:"style"`
	Condition           string    `json:"condition"`
	Features            []string  `json:"features"`
	SuggestedCategories []string  `json:"suggestedCategories"`
	Confidence          flexFloat `json:"confidence"`
}

// Analyze runs the vision analysis. It fails only when every provider call
// fails; parse problems degrade to defaults.
func (s *VisionStage) Analyze(ctx context.Context, images []provider.ImageInput, hint, language string) (*model.VisionAnalysis, error) {
	req := provider.VisionCompletionRequest{
		CompletionRequest: provider.CompletionRequest{
			Prompt:      visionPrompt(hint, language),
			Temperature: 0.2,
		},
		Images: images,
	}

	result, err := s.completer.CompleteWithVision(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, parsed := decodeLenient(result.Text, func() visionPayload {
		return visionPayload{}
	})
	if !parsed {
		log.Warn().Str("model", result.Model).Msg("unparsable vision response, degrading to generic analysis")
	}

	analysis := &model.VisionAnalysis{
		ProductType:         payload.ProductType,
		Brand:               payload.Brand,
		Model:               payload.Model,
		Colors:              payload.Colors,
		Materials:           payload.Materials,
		Style:               payload.Style,
		Condition:           payload.Condition,
		Features:            payload.Features,
		SuggestedCategories: payload.SuggestedCategories,
		RawText:             result.Text,
	}
	if analysis.ProductType == "" {
		analysis.ProductType = defaultProductType
	}
	if payload.Confidence.ok {
		analysis.Confidence = model.ClampConfidence(payload.Confidence.value)
	} else {
		analysis.Confidence = defaultConfidence
	}
	analysis.EnsureLists()

	log.Info().
		Str("productType", analysis.ProductType).
		Str("brand", analysis.Brand).
		Float64("confidence", analysis.Confidence).
		Int("imageCount", len(images)).
		Msg("vision analysis complete")

	return analysis, nil
}
