package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-3-flash-preview"

// Gemini 3.0 Flash pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.50 // $0.50 per 1M input tokens (text/image/video)
	geminiOutputPricePerMillion = 3.00 // $3.00 per 1M output tokens (including thinking)
)

// Gemini is the adapter for Google's Gemini API. It supports both text and
// vision requests.
type Gemini struct {
	cfg    Config
	client *genai.Client
}

// NewGemini creates a Gemini adapter from the given configuration.
func NewGemini(cfg Config) (Provider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

func (g *Gemini) ID() string { return g.cfg.ID }

func (g *Gemini) Models() []string { return []string{g.cfg.Model} }

func (g *Gemini) model(override string) string {
	if override != "" {
		return override
	}
	return g.cfg.Model
}

// Complete implements the Provider interface for text requests.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, TextTimeout)
	defer cancel()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	return g.generate(ctx, req, parts)
}

// CompleteWithVision implements the Provider interface for vision requests.
// Images are attached as inline blobs after the prompt, in order.
func (g *Gemini) CompleteWithVision(ctx context.Context, req VisionCompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, VisionTimeout)
	defer cancel()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MimeType},
		})
	}
	if req.Model == "" && g.cfg.VisionModel != "" {
		req.Model = g.cfg.VisionModel
	}
	return g.generate(ctx, req.CompletionRequest, parts)
}

func (g *Gemini) generate(ctx context.Context, req CompletionRequest, parts []*genai.Part) (*CompletionResult, error) {
	model := g.model(req.Model)

	var config *genai.GenerateContentConfig
	if req.System != "" || req.Temperature > 0 || req.MaxTokens > 0 {
		config = &genai.GenerateContentConfig{}
		if req.System != "" {
			config.SystemInstruction = genai.NewContentFromParts(
				[]*genai.Part{genai.NewPartFromText(req.System)}, genai.RoleUser)
		}
		if req.Temperature > 0 {
			config.Temperature = genai.Ptr(float32(req.Temperature))
		}
		if req.MaxTokens > 0 {
			config.MaxOutputTokens = int32(req.MaxTokens)
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	latency := time.Since(start)
	if err != nil {
		return nil, g.classify(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, Errorf(g.cfg.ID, KindMalformedResponse, "no response from gemini")
	}

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = callCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("provider", g.cfg.ID).
		Str("model", model).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Dur("latency", latency).
		Msg("completion call")

	return &CompletionResult{
		Text:         result.Text(),
		Model:        model,
		Usage:        usage,
		Latency:      latency,
		FinishReason: string(result.Candidates[0].FinishReason),
	}, nil
}

// classify maps genai SDK errors onto the provider error taxonomy. The SDK
// surfaces HTTP failures as APIError with the upstream status code.
func (g *Gemini) classify(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ClassifyStatus(g.cfg.ID, apiErr.Code, apiErr.Message)
	}
	return classifyCallErr(g.cfg.ID, err)
}

// TestConnection probes the API with a minimal one-token completion.
func (g *Gemini) TestConnection(ctx context.Context) ConnectionStatus {
	start := time.Now()
	_, err := g.Complete(ctx, CompletionRequest{Prompt: "ping", MaxTokens: 1})
	latency := time.Since(start)
	if err != nil && !IsKind(err, KindMalformedResponse) {
		return ConnectionStatus{OK: false, Error: err.Error(), Latency: latency}
	}
	return ConnectionStatus{OK: true, Latency: latency}
}
