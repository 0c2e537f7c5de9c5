package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvirta/productgen/internal/model"
)

func testAnalysis() *model.VisionAnalysis {
	return &model.VisionAnalysis{
		ProductType: "Wireless Mouse",
		Brand:       "Logitech",
		Model:       "G Pro",
		Colors:      []string{"black", "white"},
		Materials:   []string{"plastic"},
		Condition:   "used",
		Features:    []string{"wireless", "lightweight"},
		Confidence:  0.9,
	}
}

func TestContentStageParsesResponse(t *testing.T) {
	completer := &fakeCompleter{text: `{
		"name": "Logitech G Pro Wireless Mouse",
		"shortDescription": "A lightweight wireless gaming mouse.",
		"longDescription": "The Logitech G Pro is a lightweight wireless gaming mouse built for performance.",
		"seoTitle": "Logitech G Pro Wireless Mouse",
		"seoDescription": "Buy the Logitech G Pro wireless gaming mouse.",
		"keywords": ["mouse", "gaming", "wireless"],
		"attributes": {"Color": "black"},
		"tags": ["gaming"],
		"imageAltTexts": ["Logitech G Pro seen from the front"]
	}`}
	stage := NewContentStage(completer)

	content, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "en", 2)
	require.NoError(t, err)
	assert.Equal(t, "Logitech G Pro Wireless Mouse", content.Name)
	assert.Equal(t, []string{"mouse", "gaming", "wireless"}, content.Keywords)
	assert.Equal(t, "black", content.Attributes["Color"])
	// Provided alt text is kept, the missing one is synthesized
	require.Len(t, content.ImageAltTexts, 2)
	assert.Equal(t, "Logitech G Pro seen from the front", content.ImageAltTexts[0])
	assert.Contains(t, content.ImageAltTexts[1], "side view")
}

func TestContentStageTruncatesBoundedFields(t *testing.T) {
	long := strings.Repeat("x", 10000)
	completer := &fakeCompleter{text: fmt.Sprintf(`{
		"name": %q,
		"shortDescription": %q,
		"longDescription": %q,
		"seoTitle": %q,
		"seoDescription": %q
	}`, long, long, long, long, long)}
	stage := NewContentStage(completer)

	content, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "en", 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(content.Name), model.MaxNameLen)
	assert.LessOrEqual(t, len(content.ShortDescription), model.MaxShortDescriptionLen)
	assert.LessOrEqual(t, len(content.LongDescription), model.MaxLongDescriptionLen)
	assert.LessOrEqual(t, len(content.SEOTitle), model.MaxSEOTitleLen)
	assert.LessOrEqual(t, len(content.SEODescription), model.MaxSEODescriptionLen)
}

func TestContentStageMalformedResponseFallsBackToDerivedContent(t *testing.T) {
	stage := NewContentStage(&fakeCompleter{text: "not json at all"})

	content, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "en", 3)
	require.NoError(t, err, "malformed text must not fail the stage")

	// Name and attributes derived from the vision analysis
	assert.Contains(t, content.Name, "Logitech")
	assert.Contains(t, content.Name, "Wireless Mouse")
	assert.Equal(t, "black, white", content.Attributes["Color"])
	assert.Equal(t, "plastic", content.Attributes["Material"])
	assert.Equal(t, "Logitech", content.Attributes["Brand"])
	assert.Equal(t, "used", content.Attributes["Condition"])

	// Alt texts synthesized positionally
	require.Len(t, content.ImageAltTexts, 3)
	assert.Contains(t, content.ImageAltTexts[0], "main view")
	assert.Contains(t, content.ImageAltTexts[1], "side view")
	assert.Contains(t, content.ImageAltTexts[2], "detail")

	// Structurally valid: no nil lists or maps
	assert.NotNil(t, content.Keywords)
	assert.NotNil(t, content.Tags)
	assert.NotEmpty(t, content.ShortDescription)
	assert.NotEmpty(t, content.SEOTitle)
}

func TestContentStageSynthesizesNumberedAltTexts(t *testing.T) {
	stage := NewContentStage(&fakeCompleter{text: `{"name": "Widget"}`})

	content, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "en", 5)
	require.NoError(t, err)
	require.Len(t, content.ImageAltTexts, 5)
	assert.Contains(t, content.ImageAltTexts[3], "photo 4")
	assert.Contains(t, content.ImageAltTexts[4], "photo 5")
}

func TestContentStageEmbedsSeedDataInPrompt(t *testing.T) {
	completer := &fakeCompleter{text: `{"name": "Widget"}`}
	stage := NewContentStage(completer)

	raw := &model.RawData{Brand: "Logitech", EAN: "1234567890123", GrossPrice: 99.90, Currency: "EUR"}
	_, err := stage.Generate(context.Background(), testAnalysis(), "fast shipping", raw, "en", 1)
	require.NoError(t, err)
	assert.Contains(t, completer.lastPrompt, "1234567890123")
	assert.Contains(t, completer.lastPrompt, "fast shipping")
	assert.Contains(t, completer.lastPrompt, "99.90")
}

func TestContentStageGermanVariant(t *testing.T) {
	completer := &fakeCompleter{text: `{"name": "Kabellose Gaming-Maus"}`}
	stage := NewContentStage(completer)

	content, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "de", 1)
	require.NoError(t, err)
	// German prompt variant selected, same normalized shape back
	assert.Contains(t, completer.lastPrompt, "JSON-Format")
	assert.Equal(t, "Kabellose Gaming-Maus", content.Name)
	assert.NotNil(t, content.Attributes)
	assert.NotEmpty(t, content.ImageAltTexts)
}

func TestContentStagePropagatesProviderFailure(t *testing.T) {
	wantErr := fmt.Errorf("all text providers down")
	stage := NewContentStage(&fakeCompleter{err: wantErr})

	_, err := stage.Generate(context.Background(), testAnalysis(), "", nil, "en", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
