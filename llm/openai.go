package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// OpenAIConfig configures the OpenAI-compatible chat completion client.
type OpenAIConfig struct {
	BaseURL     string        `json:"base_url"`
	APIKey      string        `json:"api_key"`
	Model       string        `json:"model"`
	EmbedModel  string        `json:"embed_model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// OpenAIProvider implements Provider against any OpenAI-compatible
// chat completions endpoint.
type OpenAIProvider struct {
	cfg     OpenAIConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewOpenAIProvider creates an OpenAI-compatible completion client.
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	return &OpenAIProvider{
		cfg:     cfg,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "openai_provider")),
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai:" + p.cfg.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete implements Provider via POST /chat/completions.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:       p.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	start := time.Now()
	raw, err := p.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", types.NewError(types.ErrUpstreamError, "decode completion response").WithCause(err)
	}
	if resp.Error != nil {
		return "", types.NewError(types.ErrUpstreamError, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", types.NewError(types.ErrUpstreamError, "completion returned no choices")
	}

	p.logger.Debug("completion ok",
		zap.String("model", p.cfg.Model),
		zap.Duration("duration", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Embedder via POST /embeddings.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	raw, err := p.post(ctx, "/embeddings", embedRequest{Model: p.cfg.EmbedModel, Input: []string{text}})
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "decode embedding response").WithCause(err)
	}
	if len(resp.Data) == 0 {
		return nil, types.NewError(types.ErrUpstreamError, "embedding returned no data")
	}
	return resp.Data[0].Embedding, nil
}

func (p *OpenAIProvider) post(ctx context.Context, path string, body any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, types.NewError(types.ErrUpstreamTimeout, "llm request timed out").WithRetryable(true).WithCause(err)
		}
		return nil, types.NewError(types.ErrProviderUnavailable, "llm request failed").WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read response body").WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, types.NewError(types.ErrRateLimited, "llm rate limited").WithRetryable(true)
	case resp.StatusCode >= 500:
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("llm upstream error: status=%d", resp.StatusCode)).WithRetryable(true)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("llm request rejected: status=%d body=%s", resp.StatusCode, truncate(string(raw), 200)))
	}

	return raw, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
