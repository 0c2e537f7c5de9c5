package pipeline

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

func prompt(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

const visionPromptTemplate = `
	Analyze these product photographs for an e-commerce listing. The images show the same product, possibly from different angles.

	Respond in JSON format with these fields:
	- productType: What kind of product this is (e.g. "Wireless Gaming Mouse")
	- brand: The brand name if identifiable (empty string if unknown)
	- model: The model name or number if identifiable (empty string if unknown)
	- colors: List of the product's colors
	- materials: List of visible materials (e.g. "plastic", "leather")
	- style: Design style if apparent (empty string if unknown)
	- condition: One of "new", "used", "refurbished" (empty string if unknown)
	- features: List of notable features visible in the images
	- suggestedCategories: List of e-commerce categories this product fits
	- confidence: Your confidence in this analysis, between 0.0 and 1.0

	Example response:
	{"productType": "Wireless Gaming Mouse", "brand": "Logitech", "model": "G Pro X Superlight", "colors": ["black"], "materials": ["plastic"], "style": "minimalist", "condition": "new", "features": ["wireless", "lightweight"], "suggestedCategories": ["Electronics > Computer Accessories > Mice"], "confidence": 0.9}

	Respond ONLY with the JSON object, no markdown or other text.%s%s`

// visionPrompt builds the vision stage prompt. Hint and language are
// appended when present.
func visionPrompt(hint, language string) string {
	var hintPart, langPart string
	if hint != "" {
		hintPart = fmt.Sprintf("\n\nSeller's hint about the product: %s", hint)
	}
	if language != "" && language != "en" {
		langPart = fmt.Sprintf("\n\nWrite all free-text values in language %q.", language)
	}
	return prompt(visionPromptTemplate, hintPart, langPart)
}

const contentPromptTemplate = `
	Write e-commerce listing content for this product.

	Product analysis from photographs:
	%s

	Respond in JSON format with these fields:
	- name: Product name for the listing (max %d characters)
	- shortDescription: One-paragraph summary (max %d characters)
	- longDescription: Detailed marketing description, several paragraphs
	- htmlDescription: The long description with simple HTML markup (<p>, <ul>, <li>, <strong>)
	- seoTitle: Search-engine title (max %d characters)
	- seoDescription: Search-engine meta description (max %d characters)
	- keywords: List of search keywords
	- attributes: Object mapping attribute names to values (e.g. {"Color": "black"})
	- tags: List of short tags
	- imageAltTexts: One alt text per product image, in order (%d images)

	Respond ONLY with the JSON object, no markdown or other text.%s%s%s`

const contentPromptTemplateDE = `
	Erstelle Produkttexte für einen deutschen Online-Shop.

	Produktanalyse aus den Fotos:
	%s

	Antworte im JSON-Format mit diesen Feldern:
	- name: Produktname (max. %d Zeichen)
	- shortDescription: Kurzbeschreibung in einem Absatz (max. %d Zeichen)
	- longDescription: Ausführliche Produktbeschreibung, mehrere Absätze, Sie-Form
	- htmlDescription: Die ausführliche Beschreibung mit einfachem HTML (<p>, <ul>, <li>, <strong>)
	- seoTitle: SEO-Titel (max. %d Zeichen)
	- seoDescription: SEO-Meta-Beschreibung (max. %d Zeichen)
	- keywords: Liste von Suchbegriffen
	- attributes: Objekt mit Attributnamen und Werten (z.B. {"Farbe": "schwarz"})
	- tags: Liste kurzer Tags
	- imageAltTexts: Ein Alt-Text pro Produktbild, in Reihenfolge (%d Bilder)

	Antworte NUR mit dem JSON-Objekt, ohne Markdown oder weiteren Text.%s%s%s`
