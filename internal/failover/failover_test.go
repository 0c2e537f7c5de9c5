package failover

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvirta/productgen/internal/provider"
)

// fakeProvider fails with err unless err is nil, in which case it returns
// text. It counts calls to verify single-attempt semantics.
type fakeProvider struct {
	id    string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &provider.CompletionResult{Text: f.text, Model: f.id + "-model"}, nil
}

func (f *fakeProvider) CompleteWithVision(ctx context.Context, req provider.VisionCompletionRequest) (*provider.CompletionResult, error) {
	return f.Complete(ctx, req.CompletionRequest)
}

func (f *fakeProvider) TestConnection(ctx context.Context) provider.ConnectionStatus {
	return provider.ConnectionStatus{OK: f.err == nil}
}

func (f *fakeProvider) Models() []string { return nil }

type fakeSource struct {
	providers []provider.Provider
	gotCap    provider.Capability
}

func (s *fakeSource) ForCapability(cap provider.Capability) []provider.Provider {
	s.gotCap = cap
	return s.providers
}

func TestCompleteReturnsFirstSuccess(t *testing.T) {
	a := &fakeProvider{id: "a", text: "from a"}
	b := &fakeProvider{id: "b", text: "from b"}
	o := New(&fakeSource{providers: []provider.Provider{a, b}})

	result, err := o.Complete(context.Background(), provider.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from a", result.Text)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls, "lower-priority provider must not be invoked after a success")
}

func TestCompleteFallsThroughFailures(t *testing.T) {
	a := &fakeProvider{id: "a", err: provider.Errorf("a", provider.KindRateLimited, "throttled")}
	b := &fakeProvider{id: "b", err: provider.Errorf("b", provider.KindQuotaExceeded, "no credit")}
	c := &fakeProvider{id: "c", text: "from c"}
	o := New(&fakeSource{providers: []provider.Provider{a, b, c}})

	result, err := o.Complete(context.Background(), provider.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from c", result.Text)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)
}

func TestCompleteAggregatesAllFailures(t *testing.T) {
	a := &fakeProvider{id: "a", err: provider.Errorf("a", provider.KindRateLimited, "throttled")}
	b := &fakeProvider{id: "b", err: provider.Errorf("b", provider.KindTransport, "connection reset")}
	o := New(&fakeSource{providers: []provider.Provider{a, b}})

	_, err := o.Complete(context.Background(), provider.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)

	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Attempts, 2, "exactly one entry per attempted provider")
	assert.Equal(t, "a", agg.Attempts[0].Provider)
	assert.Equal(t, "b", agg.Attempts[1].Provider)
	assert.Contains(t, agg.Attempts[0].Err, "throttled")
	assert.Contains(t, agg.Attempts[1].Err, "connection reset")

	// Each provider was attempted exactly once
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestCompleteNoProvidersConfigured(t *testing.T) {
	o := New(&fakeSource{})

	_, err := o.Complete(context.Background(), provider.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)

	var noProv *NoProvidersError
	require.ErrorAs(t, err, &noProv)
	assert.Equal(t, provider.CapabilityText, noProv.Capability)

	// Distinguishable from exhaustion
	var agg *AggregateError
	assert.False(t, errors.As(err, &agg))
}

func TestCompleteWithVisionUsesVisionCapability(t *testing.T) {
	src := &fakeSource{}
	o := New(src)

	_, err := o.CompleteWithVision(context.Background(), provider.VisionCompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, provider.CapabilityVision, src.gotCap)

	var noProv *NoProvidersError
	require.ErrorAs(t, err, &noProv)
	assert.Equal(t, provider.CapabilityVision, noProv.Capability)
}

func TestAggregateErrorMessageListsAttemptsInOrder(t *testing.T) {
	err := &AggregateError{
		Capability: provider.CapabilityVision,
		Attempts: []Attempt{
			{Provider: "openai", Err: "rate limited"},
			{Provider: "gemini", Err: "timeout"},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "all 2 providers failed")
	assert.Contains(t, msg, "openai: rate limited")
	assert.Contains(t, msg, "gemini: timeout")
	assert.Less(t, strings.Index(msg, "openai"), strings.Index(msg, "gemini"))
}
