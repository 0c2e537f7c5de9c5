package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	id string
}

func (s *stubProvider) ID() string { return s.id }
func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	return &CompletionResult{Text: "ok"}, nil
}
func (s *stubProvider) CompleteWithVision(ctx context.Context, req VisionCompletionRequest) (*CompletionResult, error) {
	return &CompletionResult{Text: "ok"}, nil
}
func (s *stubProvider) TestConnection(ctx context.Context) ConnectionStatus {
	return ConnectionStatus{OK: true}
}
func (s *stubProvider) Models() []string { return nil }

func stubDef(id, envPrefix string, priority int, vision bool, constructions *int) Definition {
	return Definition{
		ID:        id,
		EnvPrefix: envPrefix,
		Priority:  priority,
		Vision:    vision,
		New: func(cfg Config) (Provider, error) {
			if constructions != nil {
				*constructions++
			}
			return &stubProvider{id: cfg.ID}, nil
		},
	}
}

func TestRegistryExcludesUnconfigured(t *testing.T) {
	t.Setenv("TESTPROV_A_API_KEY", "key-a")
	// TESTPROV_B_API_KEY deliberately unset

	r := NewRegistry(
		stubDef("a", "TESTPROV_A", 1, true, nil),
		stubDef("b", "TESTPROV_B", 2, true, nil),
	)

	available := r.Available()
	require.Len(t, available, 1)
	assert.Equal(t, "a", available[0].ID())
}

func TestRegistryPriorityOrder(t *testing.T) {
	t.Setenv("TESTPROV_A_API_KEY", "key-a")
	t.Setenv("TESTPROV_B_API_KEY", "key-b")
	t.Setenv("TESTPROV_C_API_KEY", "key-c")

	// Definitions given out of order; Available must sort by priority.
	r := NewRegistry(
		stubDef("c", "TESTPROV_C", 3, false, nil),
		stubDef("a", "TESTPROV_A", 1, true, nil),
		stubDef("b", "TESTPROV_B", 2, true, nil),
	)

	available := r.Available()
	require.Len(t, available, 3)
	assert.Equal(t, "a", available[0].ID())
	assert.Equal(t, "b", available[1].ID())
	assert.Equal(t, "c", available[2].ID())
}

func TestRegistryCapabilityFilter(t *testing.T) {
	t.Setenv("TESTPROV_A_API_KEY", "key-a")
	t.Setenv("TESTPROV_B_API_KEY", "key-b")

	r := NewRegistry(
		stubDef("a", "TESTPROV_A", 1, true, nil),
		stubDef("b", "TESTPROV_B", 2, false, nil),
	)

	vision := r.ForCapability(CapabilityVision)
	require.Len(t, vision, 1)
	assert.Equal(t, "a", vision[0].ID())

	text := r.ForCapability(CapabilityText)
	assert.Len(t, text, 2)
}

func TestRegistryMemoizesConstruction(t *testing.T) {
	t.Setenv("TESTPROV_A_API_KEY", "key-a")

	constructions := 0
	r := NewRegistry(stubDef("a", "TESTPROV_A", 1, true, &constructions))

	first := r.Available()
	second := r.Available()
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, constructions)
}

func TestRegistryConcurrentFirstAccess(t *testing.T) {
	t.Setenv("TESTPROV_A_API_KEY", "key-a")

	constructions := 0
	r := NewRegistry(stubDef("a", "TESTPROV_A", 1, true, &constructions))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Available()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, constructions)
}

func TestRegistryEmptyWhenNothingConfigured(t *testing.T) {
	r := NewRegistry(
		stubDef("a", "TESTPROV_UNSET_A", 1, true, nil),
		stubDef("b", "TESTPROV_UNSET_B", 2, true, nil),
	)
	assert.Empty(t, r.Available())
	assert.Empty(t, r.ForCapability(CapabilityVision))
}
