package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

// ContentStage converts a VisionAnalysis (plus optional hints and seed data)
// into marketing/SEO content via the failover orchestrator, restricted to
// text providers.
type ContentStage struct {
	completer Completer
}

// NewContentStage creates the content stage over the given completer.
func NewContentStage(completer Completer) *ContentStage {
	return &ContentStage{completer: completer}
}

type contentPayload struct {
	Name             string            `json:"name"`
	ShortDescription string            `json:"shortDescription"`
	LongDescription  string            `json:"longDescription"`
	HTMLDescription  string            `json:"htmlDescription"`
	SEOTitle         string            `json:"seoTitle"`
	SEODescription   string            `json:"seoDescription"`
	Keywords         []string          `json:"keywords"`
	Attributes       map[string]string `json:"attributes"`
	Tags             []string          `json:"tags"`
	ImageAltTexts    []string          `json:"imageAltTexts"`
}

// Generate produces listing content for the analyzed product. It fails only
// when every provider call fails; parse problems fall back to content
// derived deterministically from the analysis.
func (s *ContentStage) Generate(ctx context.Context, analysis *model.VisionAnalysis, hint string, raw *model.RawData, language string, imageCount int) (*model.ContentGeneration, error) {
	req := provider.CompletionRequest{
		Prompt:      contentPrompt(analysis, hint, raw, language, imageCount),
		Temperature: 0.7,
	}

	result, err := s.completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, parsed := decodeLenient(result.Text, func() contentPayload {
		return fallbackContent(analysis)
	})
	if !parsed {
		log.Warn().Str("model", result.Model).Msg("unparsable content response, deriving content from vision analysis")
	}

	content := &model.ContentGeneration{
		Name:             payload.Name,
		ShortDescription: payload.ShortDescription,
		LongDescription:  payload.LongDescription,
		HTMLDescription:  payload.HTMLDescription,
		SEOTitle:         payload.SEOTitle,
		SEODescription:   payload.SEODescription,
		Keywords:         payload.Keywords,
		Attributes:       payload.Attributes,
		Tags:             payload.Tags,
		ImageAltTexts:    payload.ImageAltTexts,
	}

	if content.Name == "" {
		content.Name = fallbackName(analysis)
	}
	if content.SEOTitle == "" {
		content.SEOTitle = content.Name
	}
	if content.ShortDescription == "" {
		content.ShortDescription = fallbackShortDescription(analysis)
	}
	if content.SEODescription == "" {
		content.SEODescription = content.ShortDescription
	}
	if content.LongDescription == "" {
		content.LongDescription = content.ShortDescription
	}
	if len(content.Attributes) == 0 {
		content.Attributes = deriveAttributes(analysis)
	}
	content.ImageAltTexts = fillAltTexts(content.ImageAltTexts, content.Name, imageCount)
	content.EnsureLists()
	content.TruncateBounded()

	log.Info().
		Str("name", content.Name).
		Int("keywords", len(content.Keywords)).
		Int("attributes", len(content.Attributes)).
		Bool("parsed", parsed).
		Msg("content generation complete")

	return content, nil
}

// contentPrompt builds the generation prompt. A German-market variant is
// selected for language "de"; both produce the same JSON shape.
func contentPrompt(analysis *model.VisionAnalysis, hint string, raw *model.RawData, language string, imageCount int) string {
	findings, _ := json.Marshal(analysis)

	var hintPart, seedPart, langPart string
	if hint != "" {
		hintPart = fmt.Sprintf("\n\nSeller's hint: %s", hint)
	}
	if raw != nil {
		var seeds []string
		if raw.Brand != "" {
			seeds = append(seeds, "brand: "+raw.Brand)
		}
		if raw.EAN != "" {
			seeds = append(seeds, "EAN: "+raw.EAN)
		}
		if raw.GrossPrice > 0 {
			seeds = append(seeds, fmt.Sprintf("price: %.2f %s", raw.GrossPrice, raw.Currency))
		}
		if raw.Condition != "" {
			seeds = append(seeds, "condition: "+raw.Condition)
		}
		if len(seeds) > 0 {
			seedPart = "\n\nKnown product data: " + strings.Join(seeds, ", ")
		}
	}

	template := contentPromptTemplate
	if language == "de" {
		template = contentPromptTemplateDE
	} else if language != "" && language != "en" {
		langPart = fmt.Sprintf("\n\nWrite all text in language %q.", language)
	}

	return prompt(template,
		string(findings),
		model.MaxNameLen,
		model.MaxShortDescriptionLen,
		model.MaxSEOTitleLen,
		model.MaxSEODescriptionLen,
		imageCount,
		hintPart, seedPart, langPart)
}

// fallbackContent builds a structurally valid payload from the vision
// analysis alone, for when the model returns unusable text.
func fallbackContent(analysis *model.VisionAnalysis) contentPayload {
	name := fallbackName(analysis)
	short := fallbackShortDescription(analysis)
	return contentPayload{
		Name:             name,
		ShortDescription: short,
		LongDescription:  short,
		SEOTitle:         name,
		SEODescription:   short,
		Keywords:         append([]string{}, analysis.Features...),
		Attributes:       deriveAttributes(analysis),
		Tags:             append([]string{}, analysis.SuggestedCategories...),
	}
}

func fallbackName(analysis *model.VisionAnalysis) string {
	parts := []string{}
	if analysis.Brand != "" {
		parts = append(parts, analysis.Brand)
	}
	if analysis.Model != "" {
		parts = append(parts, analysis.Model)
	}
	parts = append(parts, analysis.ProductType)
	return strings.Join(parts, " ")
}

func fallbackShortDescription(analysis *model.VisionAnalysis) string {
	desc := fallbackName(analysis)
	if len(analysis.Colors) > 0 {
		desc += ", " + strings.Join(analysis.Colors, "/")
	}
	if analysis.Condition != "" {
		desc += ", " + analysis.Condition
	}
	return desc + "."
}

// deriveAttributes maps vision findings onto human-readable attribute keys.
func deriveAttributes(analysis *model.VisionAnalysis) map[string]string {
	attrs := make(map[string]string)
	if len(analysis.Colors) > 0 {
		attrs["Color"] = strings.Join(analysis.Colors, ", ")
	}
	if len(analysis.Materials) > 0 {
		attrs["Material"] = strings.Join(analysis.Materials, ", ")
	}
	if analysis.Brand != "" {
		attrs["Brand"] = analysis.Brand
	}
	if analysis.Model != "" {
		attrs["Model"] = analysis.Model
	}
	if analysis.Condition != "" {
		attrs["Condition"] = analysis.Condition
	}
	if analysis.Style != "" {
		attrs["Style"] = analysis.Style
	}
	return attrs
}

// fillAltTexts synthesizes missing alt texts positionally: main view, side
// view, detail, then numbered photos.
func fillAltTexts(altTexts []string, name string, imageCount int) []string {
	out := make([]string, imageCount)
	for i := 0; i < imageCount; i++ {
		if i < len(altTexts) && altTexts[i] != "" {
			out[i] = altTexts[i]
			continue
		}
		switch i {
		case 0:
			out[i] = name + " - main view"
		case 1:
			out[i] = name + " - side view"
		case 2:
			out[i] = name + " - detail"
		default:
			out[i] = fmt.Sprintf("%s - photo %d", name, i+1)
		}
	}
	return out
}
