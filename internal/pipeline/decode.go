package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// stripFences removes surrounding markdown code fences from a model response.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractJSONObject pulls the outermost JSON object out of a possibly chatty
// response. Returns false when no braces are found.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeLenient parses a model response into T: fences are stripped, the
// outermost JSON object is extracted, and on any parse failure the fallback
// value is returned instead of an error. The second return value reports
// whether the parse succeeded. Stages share this so the vision and content
// fallback discipline cannot diverge.
func decodeLenient[T any](text string, fallback func() T) (T, bool) {
	cleaned := stripFences(text)
	obj, found := extractJSONObject(cleaned)
	if !found {
		log.Debug().Str("response", snippet(text)).Msg("no JSON object in model response, using defaults")
		return fallback(), false
	}

	var out T
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		log.Debug().Err(err).Str("response", snippet(text)).Msg("failed to parse model response, using defaults")
		return fallback(), false
	}
	return out, true
}

// flexFloat tolerates the confidence field arriving as a number, a numeric
// string, or junk. Junk decodes to the sentinel so the stage can substitute
// its default without losing the rest of the payload.
type flexFloat struct {
	value float64
	ok    bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unrecognized value ("high", etc.) - leave unset, never fail
		// the whole document over one field.
		return nil
	}
	f.value = v
	f.ok = true
	return nil
}

func snippet(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
