// Package model holds the data records shared by the generation pipeline:
// the vision analysis, the generated marketing content and the canonical
// unified product that comes out of validation.
package model

// Maximum lengths for bounded string fields. Fields are truncated to these
// limits, never rejected.
const (
	MaxNameLen             = 150
	MaxShortDescriptionLen = 300
	MaxLongDescriptionLen  = 5000
	MaxSEOTitleLen         = 70
	MaxSEODescriptionLen   = 160
	MaxAltTextLen          = 125
)

// VisionAnalysis contains structured information about a product derived from
// its photographs.
type VisionAnalysis struct {
	ProductType         string   `json:"productType"`
	Brand               string   `json:"brand,omitempty"`
	Model               string   `json:"model,omitempty"`
	Colors              []string `json:"colors"`
	Materials           []string `json:"materials"`
	Style               string   `json:"style,omitempty"`
	Condition           string   `json:"condition,omitempty"` // new, used, refurbished
	Features            []string `json:"features"`
	SuggestedCategories []string `json:"suggestedCategories"`
	Confidence          float64  `json:"confidence"` // always clamped to [0,1]

	// RawText is the unparsed provider response, kept for diagnostics.
	RawText string `json:"-"`
}

// ContentGeneration contains marketing and SEO text generated from a
// VisionAnalysis. All bounded fields are truncated to their maximum length
// before the content stage returns.
type ContentGeneration struct {
	Name             string            `json:"name"`
	ShortDescription string            `json:"shortDescription"`
	LongDescription  string            `json:"longDescription"`
	HTMLDescription  string            `json:"htmlDescription,omitempty"`
	SEOTitle         string            `json:"seoTitle"`
	SEODescription   string            `json:"seoDescription"`
	Keywords         []string          `json:"keywords"`
	Attributes       map[string]string `json:"attributes"`
	Tags             []string          `json:"tags"`
	ImageAltTexts    []string          `json:"imageAltTexts"`
}

// RawData is user-supplied seed data for a product. Everything is optional;
// fields present here win over AI-derived values during the merge.
type RawData struct {
	Name       string
	EAN        string
	SKU        string
	MPN        string
	Brand      string
	Condition  string
	GrossPrice float64
	NetPrice   float64
	VATRate    float64
	Currency   string
	Quantity   int
	Categories []string
	Weight     float64
	Dimensions *Dimensions
}

// Description groups the three description renderings of a product.
type Description struct {
	Short string `json:"short"`
	Long  string `json:"long"`
	HTML  string `json:"html,omitempty"`
}

// SEO groups the search-engine fields of a product.
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Pricing holds gross/net prices. Net is derived from gross via the VAT rate
// when not supplied independently.
type Pricing struct {
	Gross    float64 `json:"gross"`
	Net      float64 `json:"net"`
	Currency string  `json:"currency"`
	VATRate  float64 `json:"vatRate"`
}

// ProductImage is one image of the product with its alt text and position.
type ProductImage struct {
	URL      string `json:"url"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
}

// Identifiers holds the product's trade identifiers.
type Identifiers struct {
	EAN string `json:"ean"`
	SKU string `json:"sku"`
	MPN string `json:"mpn,omitempty"`
}

// Stock holds inventory information.
type Stock struct {
	Quantity     int    `json:"quantity"`
	Availability string `json:"availability"`
}

// Dimensions holds physical dimensions in centimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// UnifiedProduct is the canonical, schema-validated output record of the
// pipeline. After validation it is owned by the draft store, which may mutate
// individual fields through user edits.
type UnifiedProduct struct {
	Name        string            `json:"name"`
	Description Description       `json:"description"`
	SEO         SEO               `json:"seo"`
	Pricing     Pricing           `json:"pricing"`
	Attributes  map[string]string `json:"attributes"`
	Categories  []string          `json:"categories"`
	Images      []ProductImage    `json:"images"`
	Identifiers Identifiers       `json:"identifiers"`
	Stock       Stock             `json:"stock"`
	Brand       string            `json:"brand,omitempty"`
	Condition   string            `json:"condition"`
	Weight      float64           `json:"weight,omitempty"`
	Dimensions  *Dimensions       `json:"dimensions,omitempty"`
	Tags        []string          `json:"tags"`
	Metadata    map[string]string `json:"metadata"`
}

// ClampConfidence clamps a confidence value into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Truncate cuts s to at most max runes. Multi-byte text must not be cut in
// the middle of a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// EnsureLists replaces nil list fields with empty slices so the analysis
// serializes as [] rather than null.
func (v *VisionAnalysis) EnsureLists() {
	if v.Colors == nil {
		v.Colors = []string{}
	}
	if v.Materials == nil {
		v.Materials = []string{}
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	if v.SuggestedCategories == nil {
		v.SuggestedCategories = []string{}
	}
}

// EnsureLists replaces nil list and map fields with empty values.
func (c *ContentGeneration) EnsureLists() {
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	if c.Attributes == nil {
		c.Attributes = map[string]string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.ImageAltTexts == nil {
		c.ImageAltTexts = []string{}
	}
}

// TruncateBounded truncates every bounded field to its maximum length.
func (c *ContentGeneration) TruncateBounded() {
	c.Name = Truncate(c.Name, MaxNameLen)
	c.ShortDescription = Truncate(c.ShortDescription, MaxShortDescriptionLen)
	c.LongDescription = Truncate(c.LongDescription, MaxLongDescriptionLen)
	c.SEOTitle = Truncate(c.SEOTitle, MaxSEOTitleLen)
	c.SEODescription = Truncate(c.SEODescription, MaxSEODescriptionLen)
	for i, alt := range c.ImageAltTexts {
		c.ImageAltTexts[i] = Truncate(alt, MaxAltTextLen)
	}
}
