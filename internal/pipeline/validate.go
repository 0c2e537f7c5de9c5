package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mvirta/productgen/internal/model"
)

// FieldError is a single schema violation at a specific field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries one entry per violated field. A product failing
// schema validation is never returned partially.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("product validation failed:\n")
	for i, fe := range e.Fields {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// mergeSource identifies where a merged field value may come from.
type mergeSource int

const (
	srcRaw mergeSource = iota
	srcVision
	srcContent
)

// precedence is the declarative merge order for fields that more than one
// source can supply. First non-empty value wins.
var precedence = map[string][]mergeSource{
	"name":       {srcRaw, srcContent, srcVision},
	"brand":      {srcRaw, srcVision, srcContent},
	"condition":  {srcRaw, srcVision},
	"categories": {srcRaw, srcVision, srcContent},
}

// ValidationStage merges raw data, vision analysis and generated content
// into the canonical product and validates it against the product schema.
// It is a pure function of its inputs; no network calls.
type ValidationStage struct {
	schema *gojsonschema.Schema
}

// NewValidationStage compiles the embedded product schema.
func NewValidationStage() (*ValidationStage, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(productSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile product schema: %w", err)
	}
	return &ValidationStage{schema: schema}, nil
}

// Validate builds the unified product and checks it against the schema.
// On success it also returns non-blocking quality warnings.
func (s *ValidationStage) Validate(in Input, analysis *model.VisionAnalysis, content *model.ContentGeneration) (*model.UnifiedProduct, []string, error) {
	product := s.merge(in, analysis, content)

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(product))
	if err != nil {
		return nil, nil, fmt.Errorf("schema validation failed to run: %w", err)
	}
	if !result.Valid() {
		ve := &ValidationError{}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			ve.Fields = append(ve.Fields, FieldError{Field: field, Message: desc.Description()})
		}
		log.Warn().Int("violations", len(ve.Fields)).Msg("product failed schema validation")
		return nil, nil, ve
	}

	warnings := qualityWarnings(product)
	return product, warnings, nil
}

// merge combines the three sources into a draft product using the declarative
// precedence table for ambiguous fields.
func (s *ValidationStage) merge(in Input, analysis *model.VisionAnalysis, content *model.ContentGeneration) *model.UnifiedProduct {
	raw := in.Raw
	if raw == nil {
		raw = &model.RawData{}
	}

	stringSources := func(field string) map[mergeSource]string {
		switch field {
		case "name":
			return map[mergeSource]string{
				srcRaw:     raw.Name,
				srcContent: content.Name,
				srcVision:  fallbackName(analysis),
			}
		case "brand":
			return map[mergeSource]string{
				srcRaw:     raw.Brand,
				srcVision:  analysis.Brand,
				srcContent: content.Attributes["Brand"],
			}
		case "condition":
			return map[mergeSource]string{
				srcRaw:    raw.Condition,
				srcVision: analysis.Condition,
			}
		default:
			return nil
		}
	}

	pickString := func(field string) string {
		values := stringSources(field)
		for _, src := range precedence[field] {
			if v := values[src]; v != "" {
				return v
			}
		}
		return ""
	}

	categories := raw.Categories
	if len(categories) == 0 {
		for _, src := range precedence["categories"] {
			if src == srcVision && len(analysis.SuggestedCategories) > 0 {
				categories = analysis.SuggestedCategories
				break
			}
			if src == srcContent && len(content.Tags) > 0 {
				categories = content.Tags
				break
			}
		}
	}
	if categories == nil {
		categories = []string{}
	}

	condition := pickString("condition")
	if condition == "" {
		condition = "new"
	}

	images := make([]model.ProductImage, len(in.Images))
	for i, img := range in.Images {
		alt := ""
		if i < len(content.ImageAltTexts) {
			alt = content.ImageAltTexts[i]
		}
		images[i] = model.ProductImage{URL: img.URL, Alt: alt, Position: i}
	}

	availability := "out_of_stock"
	if raw.Quantity > 0 {
		availability = "in_stock"
	}

	product := &model.UnifiedProduct{
		Name: model.Truncate(pickString("name"), model.MaxNameLen),
		Description: model.Description{
			Short: model.Truncate(content.ShortDescription, model.MaxShortDescriptionLen),
			Long:  model.Truncate(content.LongDescription, model.MaxLongDescriptionLen),
			HTML:  content.HTMLDescription,
		},
		SEO: model.SEO{
			Title:       model.Truncate(content.SEOTitle, model.MaxSEOTitleLen),
			Description: model.Truncate(content.SEODescription, model.MaxSEODescriptionLen),
			Keywords:    content.Keywords,
		},
		Pricing:    computePricing(raw),
		Attributes: content.Attributes,
		Categories: categories,
		Images:     images,
		Identifiers: model.Identifiers{
			EAN: raw.EAN,
			SKU: raw.SKU,
			MPN: raw.MPN,
		},
		Stock: model.Stock{
			Quantity:     raw.Quantity,
			Availability: availability,
		},
		Brand:      pickString("brand"),
		Condition:  condition,
		Weight:     raw.Weight,
		Dimensions: raw.Dimensions,
		Tags:       content.Tags,
		Metadata: map[string]string{
			"visionConfidence": fmt.Sprintf("%.2f", analysis.Confidence),
		},
	}
	if product.Attributes == nil {
		product.Attributes = map[string]string{}
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.SEO.Keywords == nil {
		product.SEO.Keywords = []string{}
	}
	return product
}

// computePricing derives the net price from gross when net was not
// independently supplied: net = gross / (1 + vatRate/100).
func computePricing(raw *model.RawData) model.Pricing {
	currency := raw.Currency
	if currency == "" {
		currency = "EUR"
	}
	net := raw.NetPrice
	if net == 0 && raw.GrossPrice > 0 {
		net = round2(raw.GrossPrice / (1 + raw.VATRate/100))
	}
	return model.Pricing{
		Gross:    raw.GrossPrice,
		Net:      net,
		Currency: currency,
		VATRate:  raw.VATRate,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// qualityWarnings computes non-blocking quality hints for a valid product.
func qualityWarnings(p *model.UnifiedProduct) []string {
	var warnings []string
	if len(p.Description.Short) < 50 {
		warnings = append(warnings, "short description is under 50 characters")
	}
	if len(p.SEO.Keywords) < 3 {
		warnings = append(warnings, "fewer than 3 keywords")
	}
	if len(p.Images) < 2 {
		warnings = append(warnings, "fewer than 2 images")
	}
	if p.Brand == "" {
		warnings = append(warnings, "brand is missing")
	}
	return warnings
}
