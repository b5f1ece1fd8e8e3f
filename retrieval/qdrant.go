package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// QdrantConfig configures the product vector-index adapter.
//
// Notes:
//   - Point payloads carry document content and the original product reference.
//   - The collection is expected to exist; index building is not this module's
//     concern.
type QdrantConfig struct {
	BaseURL    string        `json:"base_url"`
	APIKey     string        `json:"api_key,omitempty"`
	Collection string        `json:"collection"`
	Timeout    time.Duration `json:"timeout,omitempty"`

	PayloadContentField string `json:"payload_content_field"` // default "content"
	PayloadIDField      string `json:"payload_id_field"`      // default "doc_id"
}

// QdrantRetriever retrieves product evidence from a Qdrant collection via
// its REST API. Embedding of the query text is delegated to an Embedder.
type QdrantRetriever struct {
	cfg      QdrantConfig
	baseURL  string
	client   *http.Client
	embedder llm.Embedder
	logger   *zap.Logger
}

// NewQdrantRetriever creates a Qdrant-backed Retriever.
func NewQdrantRetriever(cfg QdrantConfig, embedder llm.Embedder, logger *zap.Logger) *QdrantRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:6333"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PayloadContentField == "" {
		cfg.PayloadContentField = "content"
	}
	if cfg.PayloadIDField == "" {
		cfg.PayloadIDField = "doc_id"
	}

	return &QdrantRetriever{
		cfg:      cfg,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:   &http.Client{Timeout: cfg.Timeout},
		embedder: embedder,
		logger:   logger.With(zap.String("component", "qdrant_retriever")),
	}
}

// Source implements Retriever.
func (s *QdrantRetriever) Source() types.EvidenceSource { return types.SourceVectorIndex }

type qdrantSearchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

// Retrieve implements Retriever: embed the query, then search the collection.
func (s *QdrantRetriever) Retrieve(ctx context.Context, query string, limit int) ([]types.EvidenceItem, error) {
	if s.embedder == nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "no embedder configured")
	}
	if limit <= 0 {
		limit = 4
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "embed query").WithRetryable(true).WithCause(err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, url.PathEscape(s.cfg.Collection))
	reqBody, _ := json.Marshal(qdrantSearchRequest{Vector: vector, Limit: limit, WithPayload: true})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "qdrant search failed").WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, types.NewError(types.ErrSourceUnavailable,
			fmt.Sprintf("qdrant search failed: status=%d body=%s", resp.StatusCode, truncateBody(raw)))
	}

	var searchResp qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, types.NewError(types.ErrSourceUnavailable, "decode qdrant response").WithCause(err)
	}

	items := make([]types.EvidenceItem, 0, len(searchResp.Result))
	for _, hit := range searchResp.Result {
		content, _ := hit.Payload[s.cfg.PayloadContentField].(string)
		if content == "" {
			continue
		}
		sourceID, _ := hit.Payload[s.cfg.PayloadIDField].(string)
		if sourceID == "" {
			sourceID = fmt.Sprintf("%v", hit.ID)
		}
		items = append(items, types.EvidenceItem{
			Content:  content,
			Source:   types.SourceVectorIndex,
			SourceID: sourceID,
		})
	}

	s.logger.Debug("vector retrieval completed",
		zap.Int("requested", limit),
		zap.Int("returned", len(items)))

	return items, nil
}

func truncateBody(raw []byte) string {
	s := string(raw)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
