package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AyushPoddar351/E-Commerce-Assistant/internal/metrics"
	"github.com/AyushPoddar351/E-Commerce-Assistant/retrieval"
	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// Config holds the orchestrator policy knobs.
type Config struct {
	// RelevanceThreshold is the minimum relevant items to answer without a
	// rewrite.
	RelevanceThreshold int
	// MaxRewrites bounds rewrite-and-web-search cycles per run.
	MaxRewrites int
	// RetrievalLimit is the item count requested per retrieval pass.
	RetrievalLimit int
	// AmbiguousRoute is used when classification fails or is ambiguous.
	AmbiguousRoute types.RouteDecision
	// RunDeadline, when > 0, short-circuits a slow run to best-effort
	// answering at the next state boundary.
	RunDeadline time.Duration
}

// DefaultConfig returns the conservative default policy.
func DefaultConfig() Config {
	return Config{
		RelevanceThreshold: 1,
		MaxRewrites:        1,
		RetrievalLimit:     4,
		AmbiguousRoute:     types.RouteProductGrounded,
		RunDeadline:        0,
	}
}

// RunRecord summarizes one finished run for the history store.
type RunRecord struct {
	RunID        string
	Query        string
	FinalQuery   string
	Route        types.RouteDecision
	Rewrites     int
	EvidenceUsed int
	Grounded     bool
	Status       string // "ok" or "error"
	Duration     time.Duration
	CreatedAt    time.Time
}

// RunRecorder receives terminal run records. Recording failures are
// absorbed; bookkeeping never fails a run.
type RunRecorder interface {
	Record(ctx context.Context, rec RunRecord) error
}

// Orchestrator sequences router, retrievers, grader, rewriter, and
// generator through the answering state machine, enforcing the bounded
// rewrite/fallback policy.
type Orchestrator struct {
	cfg       Config
	router    *Router
	grader    *Grader
	rewriter  *Rewriter
	generator *Generator
	vector    retrieval.Retriever
	web       retrieval.Retriever
	recorder  RunRecorder
	metrics   *metrics.Collector
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewOrchestrator wires the workflow components together. recorder and
// collector may be nil.
func NewOrchestrator(
	cfg Config,
	router *Router,
	grader *Grader,
	rewriter *Rewriter,
	generator *Generator,
	vector retrieval.Retriever,
	web retrieval.Retriever,
	recorder RunRecorder,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RelevanceThreshold < 1 {
		cfg.RelevanceThreshold = 1
	}
	if cfg.RetrievalLimit < 1 {
		cfg.RetrievalLimit = 4
	}
	if !cfg.AmbiguousRoute.Valid() {
		cfg.AmbiguousRoute = types.RouteProductGrounded
	}

	return &Orchestrator{
		cfg:       cfg,
		router:    router,
		grader:    grader,
		rewriter:  rewriter,
		generator: generator,
		vector:    vector,
		web:       web,
		recorder:  recorder,
		metrics:   collector,
		tracer:    otel.Tracer("workflow"),
		logger:    logger.With(zap.String("component", "orchestrator")),
	}
}

// Answer runs the full pipeline for one query. It is the sole entry point:
// a non-empty query in, a Response or a fatal error out. Only INVALID_QUERY
// and GENERATION_FAILED reach the caller; every other failure is absorbed
// into the bounded fallback logic.
func (o *Orchestrator) Answer(ctx context.Context, queryText string) (*types.Response, error) {
	query := types.NewQuery(queryText)
	if query.IsEmpty() {
		return nil, types.NewError(types.ErrInvalidQuery, "query is empty")
	}

	st := &WorkflowState{
		RunID:     uuid.NewString(),
		State:     StateRouting,
		Query:     query,
		StartedAt: time.Now(),
	}

	ctx, span := o.tracer.Start(ctx, "workflow.answer",
		trace.WithAttributes(attribute.String("run.id", st.RunID)))
	defer span.End()

	err := o.run(ctx, st)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	duration := time.Since(st.StartedAt)

	span.SetAttributes(
		attribute.String("run.route", string(st.Route)),
		attribute.Int("run.rewrites", st.Rewrites),
		attribute.String("run.status", status),
	)
	o.metrics.RecordRun(string(st.Route), status, duration)
	o.record(ctx, st, status, duration)

	o.logger.Info("run finished",
		zap.String("run_id", st.RunID),
		zap.String("route", string(st.Route)),
		zap.Int("rewrites", st.Rewrites),
		zap.String("status", status),
		zap.Duration("duration", duration))

	if err != nil {
		return nil, err
	}
	return st.Response, nil
}

// run drives the state machine until DONE. Cancellation is honored between
// any two transitions; a cancelled run simply never reaches DONE.
func (o *Orchestrator) run(ctx context.Context, st *WorkflowState) error {
	for !st.State.Terminal() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if o.deadlineExceeded(st) && st.State != StateAnswering && st.State != StateGeneralAnswer {
			o.logger.Warn("run deadline exceeded, short-circuiting to best-effort answer",
				zap.String("run_id", st.RunID),
				zap.String("state", string(st.State)))
			o.transition(st, StateAnswering)
			continue
		}

		if err := o.step(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// step executes the handler for the current state and applies the
// transition. Recoverable collaborator failures are absorbed here.
func (o *Orchestrator) step(ctx context.Context, st *WorkflowState) error {
	switch st.State {

	case StateRouting:
		route, err := o.timedClassify(ctx, st)
		if err != nil {
			// Ambiguous or failed classification takes the configured
			// route; retrieval-first still allows answering from empty
			// evidence, so nothing is lost.
			o.logger.Warn("classification absorbed",
				zap.String("run_id", st.RunID),
				zap.Error(err))
			route = o.cfg.AmbiguousRoute
		}
		st.Route = route
		if route == types.RouteGeneral {
			o.transition(st, StateGeneralAnswer)
		} else {
			o.transition(st, StateRetrieving)
		}

	case StateGeneralAnswer:
		resp, err := o.timedGenerate(ctx, st, nil)
		if err != nil {
			return err
		}
		st.Response = resp
		o.transition(st, StateDone)

	case StateRetrieving:
		st.Retrieved = o.retrieve(ctx, st, o.vector)
		o.transition(st, StateGrading)

	case StateGrading:
		st.Graded = o.grade(ctx, st)
		if types.CountRelevant(st.Graded) >= o.cfg.RelevanceThreshold {
			o.transition(st, StateAnswering)
		} else if st.Rewrites < o.cfg.MaxRewrites {
			o.transition(st, StateRewriting)
		} else {
			o.transition(st, StateAnswering)
		}

	case StateRewriting:
		rewritten, err := o.timedRewrite(ctx, st)
		if err != nil {
			// A failed rewrite still consumes the budget: the fallback
			// pass runs with the original phrasing.
			o.logger.Warn("rewrite absorbed",
				zap.String("run_id", st.RunID),
				zap.Error(err))
			rewritten = st.Query.Rewritten(st.Query.Text())
		}
		st.Query = rewritten
		st.Rewrites++
		o.metrics.RecordRewrite()
		o.transition(st, StateRetrievingFallback)

	case StateRetrievingFallback:
		st.Retrieved = o.retrieve(ctx, st, o.web)
		o.transition(st, StateGradingFallback)

	case StateGradingFallback:
		st.Graded = o.grade(ctx, st)
		// No further rewrite after the fallback pass, by invariant.
		o.transition(st, StateAnswering)

	case StateAnswering:
		resp, err := o.timedGenerate(ctx, st, st.Graded)
		if err != nil {
			return err
		}
		st.Response = resp
		o.transition(st, StateDone)
	}

	return nil
}

// retrieve runs one retrieval pass, absorbing SOURCE_UNAVAILABLE as zero
// evidence.
func (o *Orchestrator) retrieve(ctx context.Context, st *WorkflowState, r retrieval.Retriever) []types.EvidenceItem {
	source := string(r.Source())
	start := time.Now()

	items, err := r.Retrieve(ctx, st.Query.Text(), o.cfg.RetrievalLimit)
	if err != nil {
		o.metrics.RecordRetrieval(source, "error", time.Since(start), 0)
		o.logger.Warn("retrieval absorbed as zero evidence",
			zap.String("run_id", st.RunID),
			zap.String("source", source),
			zap.Error(err))
		return nil
	}

	o.metrics.RecordRetrieval(source, "ok", time.Since(start), len(items))
	return items
}

// grade runs one grading pass and records verdict metrics.
func (o *Orchestrator) grade(ctx context.Context, st *WorkflowState) []types.GradedEvidence {
	graded := o.grader.Grade(ctx, st.Query, st.Retrieved)
	for _, g := range graded {
		o.metrics.RecordVerdict(string(g.Verdict))
	}
	return graded
}

func (o *Orchestrator) timedClassify(ctx context.Context, st *WorkflowState) (types.RouteDecision, error) {
	start := time.Now()
	route, err := o.router.Classify(ctx, st.Query)
	o.metrics.RecordLLMRequest("classify", llmStatus(err), time.Since(start))
	return route, err
}

func (o *Orchestrator) timedRewrite(ctx context.Context, st *WorkflowState) (types.Query, error) {
	start := time.Now()
	q, err := o.rewriter.Rewrite(ctx, st.Query)
	o.metrics.RecordLLMRequest("rewrite", llmStatus(err), time.Since(start))
	return q, err
}

func (o *Orchestrator) timedGenerate(ctx context.Context, st *WorkflowState, grounding []types.GradedEvidence) (*types.Response, error) {
	start := time.Now()
	resp, err := o.generator.Generate(ctx, st.Query, grounding)
	o.metrics.RecordLLMRequest("generate", llmStatus(err), time.Since(start))
	return resp, err
}

func (o *Orchestrator) transition(st *WorkflowState, to RunState) {
	o.metrics.RecordStateTransition(string(st.State), string(to))
	o.logger.Debug("state transition",
		zap.String("run_id", st.RunID),
		zap.String("from", string(st.State)),
		zap.String("to", string(to)))
	st.State = to
}

func (o *Orchestrator) deadlineExceeded(st *WorkflowState) bool {
	return o.cfg.RunDeadline > 0 && time.Since(st.StartedAt) > o.cfg.RunDeadline
}

func (o *Orchestrator) record(ctx context.Context, st *WorkflowState, status string, duration time.Duration) {
	if o.recorder == nil {
		return
	}

	rec := RunRecord{
		RunID:      st.RunID,
		Query:      st.Query.Original(),
		FinalQuery: st.Query.Text(),
		Route:      st.Route,
		Rewrites:   st.Rewrites,
		Status:     status,
		Duration:   duration,
		CreatedAt:  st.StartedAt,
	}
	if st.Response != nil {
		rec.EvidenceUsed = len(st.Response.Evidence)
		rec.Grounded = st.Response.Grounded()
	}

	if err := o.recorder.Record(ctx, rec); err != nil {
		o.logger.Warn("history record failed",
			zap.String("run_id", st.RunID),
			zap.Error(err))
	}
}

func llmStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
