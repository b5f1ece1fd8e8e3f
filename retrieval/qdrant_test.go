package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

type stubEmbedder struct {
	vec []float64
	err error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.vec, e.err
}

func TestQdrantRetriever_Retrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/products/points/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req qdrantSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Limit != 4 || !req.WithPayload || len(req.Vector) != 3 {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "u1", "score": 0.92, "payload": map[string]any{"content": "Galaxy S25, 256GB, $799", "doc_id": "prod-42"}},
				{"id": 7, "score": 0.81, "payload": map[string]any{"content": "Galaxy S25 case"}},
				{"id": "u3", "score": 0.5, "payload": map[string]any{"doc_id": "missing-content"}},
			},
		})
	}))
	defer srv.Close()

	r := NewQdrantRetriever(QdrantConfig{BaseURL: srv.URL, Collection: "products"},
		&stubEmbedder{vec: []float64{0.1, 0.2, 0.3}}, nil)

	items, err := r.Retrieve(context.Background(), "price of Galaxy S25", 4)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items (payload without content skipped), got %d", len(items))
	}
	if items[0].SourceID != "prod-42" || items[0].Source != types.SourceVectorIndex {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	// Falls back to the point ID when the payload carries no doc_id.
	if items[1].SourceID != "7" {
		t.Errorf("expected point-id fallback, got %q", items[1].SourceID)
	}
}

func TestQdrantRetriever_EmbedderFailure(t *testing.T) {
	r := NewQdrantRetriever(QdrantConfig{Collection: "products"},
		&stubEmbedder{err: errors.New("embed service down")}, nil)

	_, err := r.Retrieve(context.Background(), "q", 4)
	if !types.IsCode(err, types.ErrSourceUnavailable) {
		t.Errorf("expected SOURCE_UNAVAILABLE, got %v", err)
	}
}

func TestQdrantRetriever_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewQdrantRetriever(QdrantConfig{BaseURL: srv.URL, Collection: "products"},
		&stubEmbedder{vec: []float64{0.1}}, nil)

	_, err := r.Retrieve(context.Background(), "q", 4)
	if !types.IsCode(err, types.ErrSourceUnavailable) {
		t.Errorf("expected SOURCE_UNAVAILABLE, got %v", err)
	}
}
