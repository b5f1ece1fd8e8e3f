// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records workflow and collaborator metrics.
type Collector struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	stateTransitions *prometheus.CounterVec
	rewritesTotal    prometheus.Counter

	retrievalsTotal   *prometheus.CounterVec
	retrievalDuration *prometheus.HistogramVec
	retrievalItems    *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec

	verdictsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on reg. A nil reg
// uses the default registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of answering runs",
		},
		[]string{"route", "status"},
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Answering run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"route"},
	)

	c.stateTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of workflow state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	c.rewritesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrites_total",
			Help:      "Total number of query rewrite cycles",
		},
	)

	c.retrievalsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Total number of evidence retrievals",
		},
		[]string{"source", "status"},
	)

	c.retrievalDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Evidence retrieval duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	c.retrievalItems = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_items",
			Help:      "Evidence items returned per retrieval",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		},
		[]string{"source"},
	)

	c.llmRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests by workflow role",
		},
		[]string{"role", "status"},
	)

	c.llmRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"role"},
	)

	c.verdictsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grading_verdicts_total",
			Help:      "Total grading verdicts by outcome",
		},
		[]string{"verdict"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordRun records a completed or failed answering run.
func (c *Collector) RecordRun(route, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.runsTotal.WithLabelValues(route, status).Inc()
	c.runDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordStateTransition records one workflow state transition.
func (c *Collector) RecordStateTransition(from, to string) {
	if c == nil {
		return
	}
	c.stateTransitions.WithLabelValues(from, to).Inc()
}

// RecordRewrite records a rewrite cycle.
func (c *Collector) RecordRewrite() {
	if c == nil {
		return
	}
	c.rewritesTotal.Inc()
}

// RecordRetrieval records one evidence retrieval.
func (c *Collector) RecordRetrieval(source, status string, duration time.Duration, items int) {
	if c == nil {
		return
	}
	c.retrievalsTotal.WithLabelValues(source, status).Inc()
	c.retrievalDuration.WithLabelValues(source).Observe(duration.Seconds())
	c.retrievalItems.WithLabelValues(source).Observe(float64(items))
}

// RecordLLMRequest records one LLM request by workflow role.
func (c *Collector) RecordLLMRequest(role, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.llmRequestsTotal.WithLabelValues(role, status).Inc()
	c.llmRequestDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// RecordVerdict records one grading verdict.
func (c *Collector) RecordVerdict(verdict string) {
	if c == nil {
		return
	}
	c.verdictsTotal.WithLabelValues(verdict).Inc()
}
