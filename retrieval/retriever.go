// Package retrieval provides evidence source adapters: a uniform Retriever
// interface over the product vector index and live web search, plus a
// timeout wrapper and an optional redis-backed result cache.
package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Retriever returns an ordered sequence of evidence items for a query.
// Ordering from the source is preserved (assumed best-first); adapters do
// not re-rank.
type Retriever interface {
	// Retrieve returns at most limit evidence items for the query text.
	Retrieve(ctx context.Context, query string, limit int) ([]types.EvidenceItem, error)

	// Source returns the provenance tag this retriever produces.
	Source() types.EvidenceSource
}

// TimeoutRetriever bounds every Retrieve call and converts timeouts and
// transport failures into SOURCE_UNAVAILABLE, so the orchestrator can absorb
// them as zero evidence instead of hanging or failing the run.
type TimeoutRetriever struct {
	inner   Retriever
	timeout time.Duration
}

// WithTimeout wraps a Retriever with a per-call timeout.
func WithTimeout(inner Retriever, timeout time.Duration) *TimeoutRetriever {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TimeoutRetriever{inner: inner, timeout: timeout}
}

// Retrieve implements Retriever.
func (r *TimeoutRetriever) Retrieve(ctx context.Context, query string, limit int) ([]types.EvidenceItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	items, err := r.inner.Retrieve(callCtx, query, limit)
	if err != nil {
		if types.IsCode(err, types.ErrSourceUnavailable) {
			return nil, err
		}
		msg := "retrieval failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "retrieval timed out"
		}
		return nil, types.NewError(types.ErrSourceUnavailable, msg).WithRetryable(true).WithCause(err)
	}
	return items, nil
}

// Source implements Retriever.
func (r *TimeoutRetriever) Source() types.EvidenceSource { return r.inner.Source() }
