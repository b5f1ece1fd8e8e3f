package workflow

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Router classifies a query as product-grounded or general with a single
// language-model judgment call. The classifier is probabilistic; anything
// that is not one of the two decision values surfaces as
// CLASSIFICATION_AMBIGUOUS and the orchestrator's policy picks the route.
type Router struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewRouter creates a query router.
func NewRouter(provider llm.Provider, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		provider: provider,
		logger:   logger.With(zap.String("component", "query_router")),
	}
}

// Classify returns the route decision for the query. The query must be
// non-empty; the orchestrator validates input before calling.
func (r *Router) Classify(ctx context.Context, q types.Query) (types.RouteDecision, error) {
	response, err := r.provider.Complete(ctx, classifyPrompt(q))
	if err != nil {
		return "", types.NewError(types.ErrClassificationAmbiguous, "classification call failed").WithCause(err)
	}

	var verdict struct {
		Route string `json:"route"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &verdict); err != nil {
		return "", types.NewError(types.ErrClassificationAmbiguous, "classification response not parseable").WithCause(err)
	}

	decision := types.RouteDecision(verdict.Route)
	if !decision.Valid() {
		r.logger.Warn("classifier returned unknown route", zap.String("route", verdict.Route))
		return "", types.NewError(types.ErrClassificationAmbiguous, "classifier returned unknown route: "+verdict.Route)
	}

	r.logger.Debug("query classified",
		zap.String("query", truncateQuery(q.Text())),
		zap.String("route", string(decision)))

	return decision, nil
}

func truncateQuery(s string) string {
	if len(s) <= 80 {
		return s
	}
	return s[:80] + "..."
}
