package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/edgardesk/edgardesk/internal/domain"
	"github.com/edgardesk/edgardesk/internal/metrics"
)

// Analyzer produces filing analyses via an OpenAI-compatible chat API (e.g. Groq).
type Analyzer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// Config holds the analysis provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewAnalyzer creates an OpenAI-compatible chat-completion provider.
func NewAnalyzer(cfg *Config) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Complete implements domain.Analyzer. Returns the completion text and usage
// with transport-level metrics.
func (a *Analyzer) Complete(ctx context.Context, systemPrompt, userText string) (domain.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	}

	start := time.Now()

	resp, err := a.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AnalysisRequestsTotal.WithLabelValues(a.provider, a.model, "error").Inc()
		metrics.AnalysisErrorsTotal.WithLabelValues(a.provider, a.model, "api_error").Inc()
		return domain.Completion{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.AnalysisRequestsTotal.WithLabelValues(a.provider, a.model, "error").Inc()
		metrics.AnalysisErrorsTotal.WithLabelValues(a.provider, a.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrAnalysisProviderError)
	}

	metrics.AnalysisRequestsTotal.WithLabelValues(a.provider, a.model, "success").Inc()
	metrics.AnalysisRequestDuration.WithLabelValues(a.provider, a.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.AnalysisTokensTotal.WithLabelValues(a.provider, a.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.AnalysisTokensTotal.WithLabelValues(a.provider, a.model, "completion").Add(float64(usage.CompletionTokens))
		metrics.AnalysisTokensTotal.WithLabelValues(a.provider, a.model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// Provider 429s map to ErrRateLimited, everything else to
// ErrAnalysisProviderError for correct status mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrAnalysisProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 {
			wrap = domain.ErrRateLimited
		}
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			wrap = domain.ErrRateLimited
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
