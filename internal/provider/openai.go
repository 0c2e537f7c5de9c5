package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const openaiDefaultModel = "gpt-5.2"

// GPT-5.2 pricing (per million tokens)
const (
	openaiInputPricePerMillion  = 1.75  // $1.75 per 1M input tokens
	openaiOutputPricePerMillion = 14.00 // $14.00 per 1M output tokens
)

// OpenAI is the adapter for OpenAI's chat completion API. It supports both
// text and vision requests.
type OpenAI struct {
	cfg    Config
	client openai.Client
}

// NewOpenAI creates an OpenAI adapter from the given configuration.
func NewOpenAI(cfg Config) (Provider, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model == "" {
		cfg.Model = openaiDefaultModel
	}
	return &OpenAI{cfg: cfg, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAI) ID() string { return o.cfg.ID }

func (o *OpenAI) Models() []string { return []string{o.cfg.Model} }

func (o *OpenAI) model(override string) string {
	if override != "" {
		return override
	}
	return o.cfg.Model
}

// Complete implements the Provider interface for text requests.
func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, TextTimeout)
	defer cancel()

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	return o.complete(ctx, req, messages)
}

// CompleteWithVision implements the Provider interface for vision requests.
// Images are inlined as base64 data URLs, ordered after the prompt.
func (o *OpenAI) CompleteWithVision(ctx context.Context, req VisionCompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, VisionTimeout)
	defer cancel()

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
	}
	for _, img := range req.Images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(parts))

	if req.Model == "" && o.cfg.VisionModel != "" {
		req.Model = o.cfg.VisionModel
	}
	return o.complete(ctx, req.CompletionRequest, messages)
}

func (o *OpenAI) complete(ctx context.Context, req CompletionRequest, messages []openai.ChatCompletionMessageParamUnion) (*CompletionResult, error) {
	model := o.model(req.Model)
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return nil, o.classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, Errorf(o.cfg.ID, KindMalformedResponse, "empty response from openai")
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	usage.CostUSD = callCost(usage.InputTokens, usage.OutputTokens, openaiInputPricePerMillion, openaiOutputPricePerMillion)

	log.Info().
		Str("provider", o.cfg.ID).
		Str("model", model).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Dur("latency", latency).
		Msg("completion call")

	return &CompletionResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        model,
		Usage:        usage,
		Latency:      latency,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// classify maps OpenAI SDK errors onto the provider error taxonomy.
func (o *OpenAI) classify(err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(o.cfg.ID, apiErr.StatusCode, apiErr.Message)
	}
	return classifyCallErr(o.cfg.ID, err)
}

// TestConnection probes the API with a minimal one-token completion.
func (o *OpenAI) TestConnection(ctx context.Context) ConnectionStatus {
	start := time.Now()
	_, err := o.Complete(ctx, CompletionRequest{Prompt: "ping", MaxTokens: 1})
	latency := time.Since(start)
	if err != nil && !IsKind(err, KindMalformedResponse) {
		return ConnectionStatus{OK: false, Error: err.Error(), Latency: latency}
	}
	return ConnectionStatus{OK: true, Latency: latency}
}
