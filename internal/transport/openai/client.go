package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

// Config holds the OpenAI-compatible vision provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Prompt    string
	Provider  string
	Logger    *zap.Logger
}

// completer sends one image plus an instruction to a chat model.
type completer struct {
	client    *openai.Client
	model     string
	maxTokens int
	prompt    string
	provider  string
	operation string
	logger    *zap.Logger
}

func newCompleter(cfg *Config, operation string) completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return completer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		prompt:    cfg.Prompt,
		provider:  cfg.Provider,
		operation: operation,
		logger:    logger,
	}
}

// complete runs the chat completion with transport-level metrics.
func (c *completer) complete(ctx context.Context, img domain.Image) (string, openai.Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: c.prompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL(img),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		}},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		c.fail("api_error")
		return "", openai.Usage{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		c.fail("empty_response")
		return "", openai.Usage{}, fmt.Errorf("empty completion response: %w", domain.ErrVisionProviderError)
	}

	metrics.VisionRequestsTotal.WithLabelValues(c.provider, c.model, c.operation, "success").Inc()
	metrics.VisionRequestDuration.WithLabelValues(c.provider, c.model, c.operation).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.VisionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.VisionTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.VisionTokensTotal.WithLabelValues(c.provider, c.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage, nil
}

func (c *completer) fail(errorType string) {
	metrics.VisionRequestsTotal.WithLabelValues(c.provider, c.model, c.operation, "error").Inc()
	metrics.VisionErrorsTotal.WithLabelValues(c.provider, c.model, errorType).Inc()
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func dataURL(img domain.Image) string {
	mime := img.MIME
	if mime == "" {
		mime = domain.MIMEPNG
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// parseAPIError extracts a readable error from the API response.
// Every error wraps domain.ErrVisionProviderError for 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrVisionProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("vision API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("vision API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("vision request: %w: %w", err, wrap)
	}
	return fmt.Errorf("vision request failed: %w", wrap)
}

// extractDetail reads the "detail" field some compatible providers return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
