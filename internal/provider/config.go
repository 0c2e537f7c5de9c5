package provider

import (
	"os"
	"strconv"
)

// Config holds one provider's resolved configuration. It is built from the
// environment exactly once per process and never mutated afterwards.
type Config struct {
	ID          string
	APIKey      string
	BaseURL     string // optional endpoint override
	Model       string // default model; empty means the adapter's built-in default
	VisionModel string // default vision model, for providers that split them

	// Rate-limit hints. Informational; the adapters do not throttle
	// themselves, the static provider ordering accounts for limits.
	RequestsPerMinute int
	RequestsPerDay    int

	Priority int
	Vision   bool
}

// Configured reports whether a credential is present. A provider without a
// credential is "not configured" and excluded from all iteration.
func (c Config) Configured() bool {
	return c.APIKey != ""
}

// configFromEnv resolves a provider's configuration from the environment.
// envPrefix is the uppercase provider prefix, e.g. "OPENAI" reads
// OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL and the rate-limit hints.
func configFromEnv(id, envPrefix string, priority int, vision bool) Config {
	return Config{
		ID:                id,
		APIKey:            os.Getenv(envPrefix + "_API_KEY"),
		BaseURL:           os.Getenv(envPrefix + "_BASE_URL"),
		Model:             os.Getenv(envPrefix + "_MODEL"),
		VisionModel:       os.Getenv(envPrefix + "_VISION_MODEL"),
		RequestsPerMinute: envInt(envPrefix + "_REQUESTS_PER_MINUTE"),
		RequestsPerDay:    envInt(envPrefix + "_REQUESTS_PER_DAY"),
		Priority:          priority,
		Vision:            vision,
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
