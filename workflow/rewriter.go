package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Rewriter transforms an under-served query into an alternative phrasing to
// improve retrieval recall on the web-search fallback pass.
type Rewriter struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewRewriter creates a query rewriter.
func NewRewriter(provider llm.Provider, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{
		provider: provider,
		logger:   logger.With(zap.String("component", "query_rewriter")),
	}
}

// Rewrite produces a new Query whose lineage extends the input's. When the
// model returns nothing usable (empty text, or a phrasing already seen in
// the lineage) the original text is kept so the fallback pass still runs
// with a valid query.
func (r *Rewriter) Rewrite(ctx context.Context, q types.Query) (types.Query, error) {
	response, err := r.provider.Complete(ctx, rewritePrompt(q))
	if err != nil {
		return types.Query{}, types.NewError(types.ErrInternalError, "rewrite call failed").WithCause(err)
	}

	text := cleanRewrite(response)
	if text == "" || seenBefore(q, text) {
		r.logger.Debug("rewrite produced no new phrasing, keeping original",
			zap.String("rewritten", text))
		text = q.Text()
	}

	r.logger.Debug("query rewritten",
		zap.String("from", truncateQuery(q.Text())),
		zap.String("to", truncateQuery(text)))

	return q.Rewritten(text), nil
}

// cleanRewrite strips quotes, fences, and keeps the first non-empty line.
func cleanRewrite(response string) string {
	response = strings.TrimSpace(response)
	response = strings.Trim(response, "`\"'")
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// seenBefore guards against rewrite loops using the query lineage.
func seenBefore(q types.Query, text string) bool {
	if strings.EqualFold(text, q.Text()) {
		return true
	}
	for _, prior := range q.Lineage() {
		if strings.EqualFold(text, prior) {
			return true
		}
	}
	return false
}
