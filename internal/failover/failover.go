// Package failover tries providers in priority order until one succeeds.
// Adapters are single-attempt; this package owns the what-to-do-next policy:
// any failure advances to the next provider, a success short-circuits, and
// exhaustion yields an aggregate error carrying every attempt.
package failover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/internal/provider"
)

// Source yields the configured providers for a capability in priority order.
// *provider.Registry implements it.
type Source interface {
	ForCapability(cap provider.Capability) []provider.Provider
}

// Attempt records one failed provider attempt.
type Attempt struct {
	Provider string
	Err      string
}

// NoProvidersError reports that zero providers are configured for the
// requested capability. It is a configuration error: no network call was
// made and none would ever succeed.
type NoProvidersError struct {
	Capability provider.Capability
}

func (e *NoProvidersError) Error() string {
	return fmt.Sprintf("no providers configured for capability %q", e.Capability)
}

// AggregateError reports that every configured provider for a capability was
// attempted and failed. Attempts are listed in attempt order.
type AggregateError struct {
	Capability provider.Capability
	Attempts   []Attempt
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Provider, a.Err)
	}
	return fmt.Sprintf("all %d providers failed for capability %q: %s",
		len(e.Attempts), e.Capability, strings.Join(parts, "; "))
}

// Orchestrator iterates the registry's priority-ordered provider list for a
// capability, attempting each provider once.
type Orchestrator struct {
	source Source
}

// New creates an orchestrator over the given provider source.
func New(source Source) *Orchestrator {
	return &Orchestrator{source: source}
}

// runState tracks where an attempt sequence is. The transitions are
// Idle -> Attempting -> Success, or Attempting -> Attempting (next provider),
// or Attempting -> Exhausted once the list runs out.
type runState int

const (
	stateIdle runState = iota
	stateAttempting
	stateSuccess
	stateExhausted
)

// String returns a human-readable name for the runState.
func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAttempting:
		return "attempting"
	case stateSuccess:
		return "success"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// attemptRun holds the state of one failover sequence: the remaining
// providers, the current state and the failures recorded so far.
type attemptRun struct {
	capability provider.Capability
	providers  []provider.Provider
	state      runState
	attempts   []Attempt
}

// next advances the run to the next provider, or to Exhausted if none
// remain. Returns the provider to attempt, or nil when exhausted.
func (r *attemptRun) next() provider.Provider {
	if len(r.providers) == 0 {
		r.state = stateExhausted
		return nil
	}
	p := r.providers[0]
	r.providers = r.providers[1:]
	r.state = stateAttempting
	return p
}

// fail records a failed attempt; each provider is recorded exactly once.
func (r *attemptRun) fail(p provider.Provider, err error) {
	r.attempts = append(r.attempts, Attempt{Provider: p.ID(), Err: err.Error()})
}

// run walks the provider list for a capability, calling attempt once per
// provider. Each provider is tried at most once regardless of failure class.
func (o *Orchestrator) run(
	cap provider.Capability,
	attempt func(p provider.Provider) (*provider.CompletionResult, error),
) (*provider.CompletionResult, error) {
	providers := o.source.ForCapability(cap)
	if len(providers) == 0 {
		return nil, &NoProvidersError{Capability: cap}
	}

	r := &attemptRun{capability: cap, providers: providers, state: stateIdle}
	for {
		p := r.next()
		if p == nil {
			return nil, &AggregateError{Capability: cap, Attempts: r.attempts}
		}

		result, err := attempt(p)
		if err == nil {
			r.state = stateSuccess
			if len(r.attempts) > 0 {
				log.Info().
					Str("provider", p.ID()).
					Int("failedAttempts", len(r.attempts)).
					Str("capability", cap.String()).
					Msg("provider succeeded after failover")
			}
			return result, nil
		}
		log.Warn().
			Err(err).
			Str("provider", p.ID()).
			Str("capability", cap.String()).
			Str("state", r.state.String()).
			Msg("provider attempt failed, trying next")
		r.fail(p, err)
	}
}

// Complete performs a text completion with failover across text-capable
// providers.
func (o *Orchestrator) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResult, error) {
	return o.run(provider.CapabilityText, func(p provider.Provider) (*provider.CompletionResult, error) {
		return p.Complete(ctx, req)
	})
}

// CompleteWithVision performs a vision completion with failover across
// vision-capable providers.
func (o *Orchestrator) CompleteWithVision(ctx context.Context, req provider.VisionCompletionRequest) (*provider.CompletionResult, error) {
	return o.run(provider.CapabilityVision, func(p provider.Provider) (*provider.CompletionResult, error) {
		return p.CompleteWithVision(ctx, req)
	})
}
