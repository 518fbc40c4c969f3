package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meridian"

// Collector owns the metric vectors and their registry.
//
// Metrics:
//   - meridian_policy_evaluations_total: evaluations by policy and decision
//   - meridian_policy_violations_total: violations by rule
//   - meridian_policy_evaluation_duration_seconds: evaluation latency
//   - meridian_solver_calls_total: max-discount solver calls by limiting factor
//   - meridian_policy_reloads_total: policy reloads by outcome
//   - meridian_http_requests_total: tool server requests by handler and code
//   - meridian_http_request_duration_seconds: tool server latency by handler
type Collector struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	violationsTotal    *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	solverCallsTotal   *prometheus.CounterVec
	reloadsTotal       *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry. Passing nil
// creates a fresh registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"policy_id", "decision"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of rule violations",
			},
			[]string{"rule"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "policy_evaluation_duration_seconds",
				Help:      "Duration of policy evaluation in seconds",
				// Evaluations are in-memory and should stay under a
				// few milliseconds.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
			[]string{"policy_id"},
		),

		solverCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solver_calls_total",
				Help:      "Total number of max-discount solver calls",
			},
			[]string{"limiting_factor"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_reloads_total",
				Help:      "Total number of policy reloads",
			},
			[]string{"status"},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of tool server requests",
			},
			[]string{"handler", "code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of tool server requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}

	registry.MustRegister(
		c.evaluationsTotal,
		c.violationsTotal,
		c.evaluationDuration,
		c.solverCallsTotal,
		c.reloadsTotal,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordEvaluation records one policy evaluation and its violations.
func (c *Collector) RecordEvaluation(policyID string, approved bool, violations []string, duration time.Duration) {
	decision := "approved"
	if !approved {
		decision = "rejected"
	}
	c.evaluationsTotal.WithLabelValues(policyID, decision).Inc()
	c.evaluationDuration.WithLabelValues(policyID).Observe(duration.Seconds())
	for _, rule := range violations {
		c.violationsTotal.WithLabelValues(rule).Inc()
	}
}

// RecordSolverCall records one max-discount solver call.
func (c *Collector) RecordSolverCall(limitingFactor string) {
	c.solverCallsTotal.WithLabelValues(limitingFactor).Inc()
}

// RecordReload records a policy reload outcome ("success" or "error").
func (c *Collector) RecordReload(status string) {
	c.reloadsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records one tool server request.
func (c *Collector) RecordHTTPRequest(handler, code string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(handler, code).Inc()
	c.httpRequestDuration.WithLabelValues(handler).Observe(duration.Seconds())
}
