package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Generator synthesizes the final answer from the query and the curated
// evidence set. Only items marked relevant are passed as context; with no
// grounding at all it produces a best-effort answer from the query alone.
// Generation failure is not retried here; it propagates as
// GENERATION_FAILED and is fatal for the run.
type Generator struct {
	provider    llm.Provider
	counter     *TokenCounter
	tokenBudget int
	logger      *zap.Logger
}

// NewGenerator creates a response generator. tokenBudget caps the grounding
// packed into the prompt (default 3000 tokens).
func NewGenerator(provider llm.Provider, counter *TokenCounter, tokenBudget int, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenBudget <= 0 {
		tokenBudget = 3000
	}
	return &Generator{
		provider:    provider,
		counter:     counter,
		tokenBudget: tokenBudget,
		logger:      logger.With(zap.String("component", "response_generator")),
	}
}

// Generate produces the Response. The Response's evidence list holds exactly
// the items packed into the prompt, so callers can distinguish grounded from
// ungrounded answers without parsing text.
func (g *Generator) Generate(ctx context.Context, q types.Query, grounding []types.GradedEvidence) (*types.Response, error) {
	used := g.packGrounding(types.FilterRelevant(grounding))

	answer, err := g.provider.Complete(ctx, generatePrompt(q, used))
	if err != nil {
		return nil, types.NewError(types.ErrGenerationFailed, "completion failed").WithCause(err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, types.NewError(types.ErrGenerationFailed, "completion returned empty answer")
	}

	g.logger.Debug("answer generated",
		zap.Int("evidence_used", len(used)),
		zap.Bool("grounded", len(used) > 0))

	return &types.Response{Answer: answer, Evidence: used}, nil
}

// packGrounding keeps relevant items, best-first, until the token budget is
// exhausted. The first item is always kept so weak evidence is used rather
// than silently dropped.
func (g *Generator) packGrounding(items []types.EvidenceItem) []types.EvidenceItem {
	if len(items) == 0 {
		return nil
	}

	var used []types.EvidenceItem
	remaining := g.tokenBudget
	for _, item := range items {
		cost := g.counter.Count(item.Content)
		if len(used) > 0 && cost > remaining {
			g.logger.Debug("grounding token budget exhausted",
				zap.Int("kept", len(used)),
				zap.Int("dropped", len(items)-len(used)))
			break
		}
		used = append(used, item)
		remaining -= cost
	}
	return used
}
