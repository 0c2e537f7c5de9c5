// Package provider wraps the upstream text/vision completion services behind
// a uniform adapter contract. Adapters normalize request/response shapes and
// classify errors; they are single-attempt by design. Retry and fallback
// belong to the failover package.
package provider

import (
	"context"
	"time"
)

// Capability describes what a provider can do.
type Capability int

const (
	CapabilityText Capability = iota
	CapabilityVision
)

// String returns a human-readable name for the Capability.
func (c Capability) String() string {
	switch c {
	case CapabilityText:
		return "text"
	case CapabilityVision:
		return "vision"
	default:
		return "unknown"
	}
}

// Per-call hard timeouts. Vision calls carry image payloads and slower
// models, so they get a longer budget.
const (
	TextTimeout   = 30 * time.Second
	VisionTimeout = 75 * time.Second
)

// ImageInput is one image attached to a vision request.
type ImageInput struct {
	Data     []byte
	MimeType string
}

// CompletionRequest is a normalized text completion request.
type CompletionRequest struct {
	Prompt      string
	System      string
	Model       string // override; empty means the provider's default model
	Temperature float64
	MaxTokens   int
}

// VisionCompletionRequest extends CompletionRequest with an ordered list of
// images.
type VisionCompletionRequest struct {
	CompletionRequest
	Images []ImageInput
}

// Usage contains token usage and cost information for one call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// CompletionResult is the normalized response of one completion call.
// It is consumed immediately by the calling stage and never cached here.
type CompletionResult struct {
	Text         string
	Model        string
	Usage        Usage
	Latency      time.Duration
	FinishReason string
}

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus struct {
	OK      bool
	Error   string
	Latency time.Duration
}

// Provider is the adapter contract for one upstream completion service.
type Provider interface {
	// ID returns the provider's stable identifier (e.g. "openai").
	ID() string
	// Complete performs a single text completion attempt.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	// CompleteWithVision performs a single vision completion attempt. It
	// fails with a capability error on text-only providers.
	CompleteWithVision(ctx context.Context, req VisionCompletionRequest) (*CompletionResult, error)
	// TestConnection probes the provider with a minimal request.
	TestConnection(ctx context.Context) ConnectionStatus
	// Models returns the models this adapter is configured to use.
	Models() []string
}

func callCost(inputTokens, outputTokens int64, inputPricePerMillion, outputPricePerMillion float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * outputPricePerMillion
	return inputCost + outputCost
}
