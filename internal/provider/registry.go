package provider

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Factory builds a Provider from a resolved configuration.
type Factory func(cfg Config) (Provider, error)

// Definition declares one provider identity known to the registry: its id,
// the env prefix its credentials live under, its static priority (lower is
// tried first) and whether it can handle vision requests.
type Definition struct {
	ID        string
	EnvPrefix string
	Priority  int
	Vision    bool
	New       Factory
}

type entry struct {
	def  Definition
	once sync.Once
	p    Provider
	err  error
}

// resolve reads the entry's configuration from the environment and constructs
// the adapter. Memoized: concurrent first access performs a single
// initialization.
func (e *entry) resolve() (Provider, error) {
	e.once.Do(func() {
		cfg := configFromEnv(e.def.ID, e.def.EnvPrefix, e.def.Priority, e.def.Vision)
		if !cfg.Configured() {
			return
		}
		e.p, e.err = e.def.New(cfg)
		if e.err != nil {
			log.Warn().Err(e.err).Str("provider", e.def.ID).Msg("provider construction failed, excluding from registry")
		}
	})
	return e.p, e.err
}

// Registry holds the statically configured, priority-ordered set of provider
// definitions and lazily constructs adapters for those with credentials
// present. It is safe for concurrent use and read-only after construction
// apart from the memoized resolution.
type Registry struct {
	entries []*entry // sorted by ascending priority
}

// NewRegistry creates a registry over the given definitions, ordered by
// ascending priority.
func NewRegistry(defs ...Definition) *Registry {
	entries := make([]*entry, len(defs))
	for i, d := range defs {
		entries[i] = &entry{def: d}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].def.Priority < entries[j].def.Priority
	})
	return &Registry{entries: entries}
}

// DefaultRegistry returns the registry over the built-in provider set:
// OpenAI, Gemini and Mistral, in that priority order. Only providers whose
// API key env var is set become available.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Definition{ID: "openai", EnvPrefix: "OPENAI", Priority: 1, Vision: true, New: NewOpenAI},
		Definition{ID: "gemini", EnvPrefix: "GEMINI", Priority: 2, Vision: true, New: NewGemini},
		Definition{ID: "mistral", EnvPrefix: "MISTRAL", Priority: 3, Vision: false, New: NewCompat},
	)
}

// Available returns the configured providers in priority order. A provider
// with no credential present is silently excluded, never an error.
func (r *Registry) Available() []Provider {
	out := make([]Provider, 0, len(r.entries))
	for _, e := range r.entries {
		p, err := e.resolve()
		if err != nil || p == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ForCapability returns the configured providers that support the given
// capability, in priority order.
func (r *Registry) ForCapability(cap Capability) []Provider {
	out := make([]Provider, 0, len(r.entries))
	for _, e := range r.entries {
		if cap == CapabilityVision && !e.def.Vision {
			continue
		}
		p, err := e.resolve()
		if err != nil || p == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
