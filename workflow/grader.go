package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Grader scores each evidence item against the query with an independent
// language-model judgment per item. Verdicts for distinct items are issued
// concurrently; the result sequence always matches the input order,
// one-to-one. A grading call is retried once; a second failure marks that
// item irrelevant, so failures discard evidence rather than fabricate
// relevance.
type Grader struct {
	provider    llm.Provider
	concurrency int
	logger      *zap.Logger
}

// NewGrader creates a relevance grader. concurrency caps in-flight grading
// calls per pass (default 4).
func NewGrader(provider llm.Provider, concurrency int, logger *zap.Logger) *Grader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 4
	}
	return &Grader{
		provider:    provider,
		concurrency: concurrency,
		logger:      logger.With(zap.String("component", "relevance_grader")),
	}
}

// Grade returns one GradedEvidence per input item, order-preserving. It
// never fails the pass: per-item failures degrade to irrelevant verdicts.
func (g *Grader) Grade(ctx context.Context, q types.Query, items []types.EvidenceItem) []types.GradedEvidence {
	graded := make([]types.GradedEvidence, len(items))
	if len(items) == 0 {
		return graded
	}

	eg, gradeCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i, item := range items {
		eg.Go(func() error {
			verdict := g.gradeOne(gradeCtx, q, item)
			graded[i] = types.GradedEvidence{Item: item, Verdict: verdict, Query: q.Text()}
			return nil
		})
	}

	// Goroutines never return errors; Wait only fences the fan-in.
	_ = eg.Wait()

	return graded
}

// gradeOne issues the judgment call for a single item, retrying once.
func (g *Grader) gradeOne(ctx context.Context, q types.Query, item types.EvidenceItem) types.Verdict {
	prompt := gradePrompt(q, item)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		verdict, err := g.callOnce(ctx, prompt)
		if err == nil {
			return verdict
		}
		lastErr = err
	}

	g.logger.Warn("grading failed twice, marking irrelevant",
		zap.String("source_id", item.SourceID),
		zap.Error(types.NewError(types.ErrGradingFailed, "grading call failed").WithCause(lastErr)))

	return types.VerdictIrrelevant
}

func (g *Grader) callOnce(ctx context.Context, prompt string) (types.Verdict, error) {
	response, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	var out struct {
		Verdict string `json:"verdict"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &out); err != nil {
		return "", fmt.Errorf("parse grading response: %w", err)
	}

	switch types.Verdict(out.Verdict) {
	case types.VerdictRelevant:
		return types.VerdictRelevant, nil
	case types.VerdictIrrelevant:
		return types.VerdictIrrelevant, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", out.Verdict)
	}
}
