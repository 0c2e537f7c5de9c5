package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	compatDefaultBaseURL = "https://api.mistral.ai/v1"
	compatDefaultModel   = "mistral-large-latest"
)

// Mistral Large pricing (per million tokens)
const (
	compatInputPricePerMillion  = 2.00
	compatOutputPricePerMillion = 6.00
)

// Compat is a text-only adapter for OpenAI-compatible chat completion
// endpoints, spoken over plain HTTP. The default endpoint is Mistral; any
// compatible service works via the base URL override.
type Compat struct {
	cfg        Config
	httpClient *resty.Client
}

// NewCompat creates an adapter for an OpenAI-compatible endpoint.
func NewCompat(cfg Config) (Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = compatDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = compatDefaultModel
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeaders(map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		}).
		SetAuthToken(cfg.APIKey)

	return &Compat{cfg: cfg, httpClient: httpClient}, nil
}

func (c *Compat) ID() string { return c.cfg.ID }

func (c *Compat) Models() []string { return []string{c.cfg.Model} }

type compatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type compatRequest struct {
	Model       string          `json:"model"`
	Messages    []compatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type compatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// Complete implements the Provider interface for text requests.
func (c *Compat) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, TextTimeout)
	defer cancel()

	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	var messages []compatMessage
	if req.System != "" {
		messages = append(messages, compatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, compatMessage{Role: "user", Content: req.Prompt})

	body := compatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	result := &compatResponse{}
	start := time.Now()
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post("/chat/completions")
	latency := time.Since(start)

	if err != nil {
		return nil, classifyCallErr(c.cfg.ID, err)
	}
	if res.IsError() {
		return nil, ClassifyStatus(c.cfg.ID, res.StatusCode(), string(res.Body()))
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, Errorf(c.cfg.ID, KindMalformedResponse, "empty response body")
	}

	usage := Usage{
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		TotalTokens:  result.Usage.TotalTokens,
	}
	usage.CostUSD = callCost(usage.InputTokens, usage.OutputTokens, compatInputPricePerMillion, compatOutputPricePerMillion)

	resolvedModel := result.Model
	if resolvedModel == "" {
		resolvedModel = model
	}

	log.Info().
		Str("provider", c.cfg.ID).
		Str("model", resolvedModel).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Dur("latency", latency).
		Msg("completion call")

	return &CompletionResult{
		Text:         result.Choices[0].Message.Content,
		Model:        resolvedModel,
		Usage:        usage,
		Latency:      latency,
		FinishReason: result.Choices[0].FinishReason,
	}, nil
}

// CompleteWithVision fails with a capability error: compatible endpoints are
// wired text-only here.
func (c *Compat) CompleteWithVision(ctx context.Context, req VisionCompletionRequest) (*CompletionResult, error) {
	return nil, Errorf(c.cfg.ID, KindCapability, "vision is not supported by this provider")
}

// TestConnection probes the endpoint with a minimal one-token completion.
func (c *Compat) TestConnection(ctx context.Context) ConnectionStatus {
	start := time.Now()
	_, err := c.Complete(ctx, CompletionRequest{Prompt: "ping", MaxTokens: 1})
	latency := time.Since(start)
	if err != nil && !IsKind(err, KindMalformedResponse) {
		return ConnectionStatus{OK: false, Error: err.Error(), Latency: latency}
	}
	return ConnectionStatus{OK: true, Latency: latency}
}
