// Package assistant provides a top-level entry point that wires the full
// answering pipeline from a single Config: router, vector retrieval, grading,
// rewrite-and-web-search fallback, and generation.
//
// Usage:
//
//	import assistant "github.com/AyushPoddar351/E-Commerce-Assistant"
//
//	cfg, err := config.Load("assistant.yaml")
//	a, err := assistant.New(cfg, assistant.WithLogger(logger))
//	resp, err := a.Answer(ctx, "price of Samsung Galaxy S25")
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/config"
	"github.com/AyushPoddar351/E-Commerce-Assistant/history"
	"github.com/AyushPoddar351/E-Commerce-Assistant/internal/metrics"
	"github.com/AyushPoddar351/E-Commerce-Assistant/llm"
	"github.com/AyushPoddar351/E-Commerce-Assistant/retrieval"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
	"github.com/AyushPoddar351/E-Commerce-Assistant/workflow"
)

// Assistant is the assembled answering pipeline.
type Assistant struct {
	orchestrator *workflow.Orchestrator
	store        *history.Store
	rdb          *redis.Client
	logger       *zap.Logger
}

type options struct {
	logger    *zap.Logger
	provider  llm.Provider
	embedder  llm.Embedder
	vector    retrieval.Retriever
	web       retrieval.Retriever
	recorder  workflow.RunRecorder
	collector *metrics.Collector
}

// Option overrides one collaborator of the assembled pipeline.
type Option func(*options)

// WithLogger sets the zap logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProvider replaces the OpenAI-compatible completion client.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithEmbedder replaces the query embedder used for vector retrieval.
func WithEmbedder(e llm.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithVectorRetriever replaces the product vector-index retriever.
func WithVectorRetriever(r retrieval.Retriever) Option {
	return func(o *options) { o.vector = r }
}

// WithWebRetriever replaces the web-search fallback retriever.
func WithWebRetriever(r retrieval.Retriever) Option {
	return func(o *options) { o.web = r }
}

// WithRecorder replaces the run-history recorder.
func WithRecorder(rec workflow.RunRecorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithMetrics sets the metrics collector. Without this option no metrics
// are collected.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// New assembles an Assistant from cfg. Options replace individual
// collaborators, which is how tests substitute fakes.
func New(cfg *config.Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	a := &Assistant{logger: o.logger}

	if o.provider == nil || o.embedder == nil {
		base := llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			EmbedModel:  cfg.LLM.EmbedModel,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, o.logger)
		if o.embedder == nil {
			o.embedder = base
		}
		if o.provider == nil {
			o.provider = base
			if cfg.LLM.RateLimit > 0 {
				o.provider = llm.NewRateLimitedProvider(base, cfg.LLM.RateLimit, cfg.LLM.RateBurst)
			}
		}
	}

	if cfg.Redis.Enabled {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if o.vector == nil {
		qdrant := retrieval.NewQdrantRetriever(retrieval.QdrantConfig{
			BaseURL:    cfg.Qdrant.BaseURL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    cfg.Qdrant.Timeout,
		}, o.embedder, o.logger)
		o.vector = retrieval.WithTimeout(qdrant, cfg.Qdrant.Timeout)
	}

	if o.web == nil {
		searcher := retrieval.NewWebSearcher(retrieval.WebSearchConfig{
			BaseURL: cfg.WebSearch.BaseURL,
			APIKey:  cfg.WebSearch.APIKey,
			Timeout: cfg.WebSearch.Timeout,
		}, o.logger)
		var web retrieval.Retriever = retrieval.WithTimeout(searcher, cfg.WebSearch.Timeout)
		if a.rdb != nil {
			web = retrieval.NewCachedRetriever(web, a.rdb, cfg.Redis.TTL, o.logger)
		}
		o.web = web
	}

	if o.recorder == nil && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, o.logger)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.store = store
		o.recorder = store
	}

	counter := workflow.NewTokenCounter(cfg.LLM.Model, o.logger)

	a.orchestrator = workflow.NewOrchestrator(
		workflow.Config{
			RelevanceThreshold: cfg.Workflow.RelevanceThreshold,
			MaxRewrites:        cfg.Workflow.MaxRewrites,
			RetrievalLimit:     cfg.Workflow.RetrievalLimit,
			AmbiguousRoute:     types.RouteDecision(cfg.Workflow.AmbiguousRoute),
			RunDeadline:        cfg.Workflow.RunDeadline,
		},
		workflow.NewRouter(o.provider, o.logger),
		workflow.NewGrader(o.provider, 0, o.logger),
		workflow.NewRewriter(o.provider, o.logger),
		workflow.NewGenerator(o.provider, counter, cfg.Workflow.GroundingTokenBudget, o.logger),
		o.vector,
		o.web,
		o.recorder,
		o.collector,
		o.logger,
	)

	return a, nil
}

// Answer runs the full pipeline for one user query.
func (a *Assistant) Answer(ctx context.Context, query string) (*types.Response, error) {
	return a.orchestrator.Answer(ctx, query)
}

// History returns the run-history store, or nil when history is disabled or
// a custom recorder was injected.
func (a *Assistant) History() *history.Store {
	return a.store
}

// Close releases the assistant's owned resources.
func (a *Assistant) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history store: %w", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	return errors.Join(errs...)
}
