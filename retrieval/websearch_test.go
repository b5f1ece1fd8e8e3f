package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

func TestWebSearcher_Retrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req webSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "Galaxy S25 price" || req.MaxResults != 3 {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Galaxy S25 review", "url": "https://example.com/a", "content": "The S25 starts at $799.", "score": 0.9},
				{"title": "", "url": "https://example.com/b", "content": "Pricing roundup.", "score": 0.7},
				{"title": "broken", "url": "", "content": "no url", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	s := NewWebSearcher(WebSearchConfig{BaseURL: srv.URL, APIKey: "k"}, nil)

	items, err := s.Retrieve(context.Background(), "Galaxy S25 price", 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items (missing URL skipped), got %d", len(items))
	}
	if items[0].Source != types.SourceWebSearch || items[0].SourceID != "https://example.com/a" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Content != "Galaxy S25 review\nThe S25 starts at $799." {
		t.Errorf("expected title prepended, got %q", items[0].Content)
	}
}

func TestWebSearcher_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]any, 10)
		for i := range results {
			results[i] = map[string]any{"title": "t", "url": "https://example.com", "content": "c"}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	s := NewWebSearcher(WebSearchConfig{BaseURL: srv.URL}, nil)

	items, err := s.Retrieve(context.Background(), "q", 4)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("expected limit enforced, got %d items", len(items))
	}
}

func TestWebSearcher_Unavailable(t *testing.T) {
	s := NewWebSearcher(WebSearchConfig{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := s.Retrieve(context.Background(), "q", 4)
	if !types.IsCode(err, types.ErrSourceUnavailable) {
		t.Errorf("expected SOURCE_UNAVAILABLE, got %v", err)
	}
}
