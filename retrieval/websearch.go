package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// WebSearchConfig configures the live web-search adapter.
type WebSearchConfig struct {
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"api_key"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// WebSearcher retrieves fallback evidence from a Tavily-compatible search
// API. Result URLs become the evidence source identifiers.
type WebSearcher struct {
	cfg     WebSearchConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewWebSearcher creates a web-search Retriever.
func NewWebSearcher(cfg WebSearchConfig, logger *zap.Logger) *WebSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &WebSearcher{
		cfg:     cfg,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "web_searcher")),
	}
}

// Source implements Retriever.
func (s *WebSearcher) Source() types.EvidenceSource { return types.SourceWebSearch }

type webSearchRequest struct {
	APIKey     string `json:"api_key,omitempty"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type webSearchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Retrieve implements Retriever via POST /search.
func (s *WebSearcher) Retrieve(ctx context.Context, query string, limit int) ([]types.EvidenceItem, error) {
	if limit <= 0 {
		limit = 4
	}

	reqBody, _ := json.Marshal(webSearchRequest{APIKey: s.cfg.APIKey, Query: query, MaxResults: limit})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "web search failed").WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, types.NewError(types.ErrSourceUnavailable,
			fmt.Sprintf("web search failed: status=%d body=%s", resp.StatusCode, truncateBody(raw)))
	}

	var searchResp webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "decode web search response").WithCause(err)
	}

	items := make([]types.EvidenceItem, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		if r.Content == "" || r.URL == "" {
			continue
		}
		content := r.Content
		if r.Title != "" {
			content = r.Title + "\n" + r.Content
		}
		items = append(items, types.EvidenceItem{
			Content:  content,
			Source:   types.SourceWebSearch,
			SourceID: r.URL,
		})
		if len(items) >= limit {
			break
		}
	}

	s.logger.Debug("web retrieval completed",
		zap.Int("returned", len(items)),
		zap.Duration("duration", time.Since(start)))

	return items, nil
}
