package pipeline

// productSchema is the canonical JSON Schema every UnifiedProduct must
// satisfy. Draft-04, validated with gojsonschema.
const productSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "title": "UnifiedProduct",
  "type": "object",
  "required": ["name", "description", "seo", "pricing", "images", "identifiers", "stock", "condition"],
  "properties": {
    "name": {
      "type": "string",
      "minLength": 1,
      "maxLength": 150
    },
    "description": {
      "type": "object",
      "required": ["short", "long"],
      "properties": {
        "short": {"type": "string", "minLength": 1, "maxLength": 300},
        "long": {"type": "string", "minLength": 1},
        "html": {"type": "string"}
      }
    },
    "seo": {
      "type": "object",
      "required": ["title", "description", "keywords"],
      "properties": {
        "title": {"type": "string", "maxLength": 70},
        "description": {"type": "string", "maxLength": 160},
        "keywords": {"type": "array", "items": {"type": "string"}}
      }
    },
    "pricing": {
      "type": "object",
      "required": ["gross", "net", "currency", "vatRate"],
      "properties": {
        "gross": {"type": "number", "minimum": 0, "exclusiveMinimum": true},
        "net": {"type": "number", "minimum": 0, "exclusiveMinimum": true},
        "currency": {"type": "string", "minLength": 3, "maxLength": 3},
        "vatRate": {"type": "number", "minimum": 0, "maximum": 100}
      }
    },
    "attributes": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "categories": {
      "type": "array",
      "items": {"type": "string"}
    },
    "images": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["url", "alt", "position"],
        "properties": {
          "url": {"type": "string", "minLength": 1},
          "alt": {"type": "string"},
          "position": {"type": "integer", "minimum": 0}
        }
      }
    },
    "identifiers": {
      "type": "object",
      "properties": {
        "ean": {"type": "string"},
        "sku": {"type": "string"},
        "mpn": {"type": "string"}
      }
    },
    "stock": {
      "type": "object",
      "required": ["quantity", "availability"],
      "properties": {
        "quantity": {"type": "integer", "minimum": 0},
        "availability": {"type": "string", "enum": ["in_stock", "out_of_stock", "preorder"]}
      }
    },
    "brand": {"type": "string"},
    "condition": {"type": "string", "enum": ["new", "used", "refurbished"]},
    "weight": {"type": "number", "minimum": 0},
    "dimensions": {
      "type": "object",
      "properties": {
        "length": {"type": "number", "minimum": 0},
        "width": {"type": "number", "minimum": 0},
        "height": {"type": "number", "minimum": 0}
      }
    },
    "tags": {"type": "array", "items": {"type": "string"}},
    "metadata": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`
