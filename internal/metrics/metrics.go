// Package metrics exposes Prometheus collectors fed by workflow hooks and
// LLM client events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spetersoncode/warden/client"
	"github.com/spetersoncode/warden/event"
	"github.com/spetersoncode/warden/internal/retry"
	"github.com/spetersoncode/warden/model"
	"github.com/spetersoncode/warden/workflow"
)

const namespace = "warden"

// Metrics holds the collectors of one process.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	Steps        *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Routes       *prometheus.CounterVec
	LLMRequests  *prometheus.CounterVec
	LLMTokens    *prometheus.CounterVec
	LLMRetries   *prometheus.CounterVec
	LLMCost      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Workflow runs by termination.",
		}, []string{"workflow", "termination"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of workflow runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"workflow"}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Step executions by outcome.",
		}, []string{"workflow", "step", "status"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of step executions.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"workflow", "step"}),
		Routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Edges taken between steps.",
		}, []string{"workflow", "from", "to"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"provider", "model", "status"}),
		LLMTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by direction.",
		}, []string{"provider", "model", "direction"}),
		LLMRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_retries_total",
			Help:      "Chat request retries.",
		}, []string{"provider", "model"}),
		LLMCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_usd_total",
			Help:      "Estimated spend for catalogued models.",
		}, []string{"provider", "model"}),
	}
	reg.MustRegister(
		m.Runs, m.RunDuration,
		m.Steps, m.StepDuration, m.Routes,
		m.LLMRequests, m.LLMTokens, m.LLMRetries, m.LLMCost,
	)
	return m
}

// Hooks returns workflow hooks that record run, step and route metrics.
func (m *Metrics) Hooks() workflow.Hooks {
	return workflow.Hooks{
		OnStepEnd: func(e event.Event) {
			status := "ok"
			if e.Failed() {
				status = "error"
			}
			m.Steps.WithLabelValues(e.Workflow, e.StepName, status).Inc()
			m.StepDuration.WithLabelValues(e.Workflow, e.StepName).Observe(e.Duration.Seconds())
		},
		OnRoute: func(e event.Event) {
			m.Routes.WithLabelValues(e.Workflow, e.StepName, e.RouteName).Inc()
		},
		OnRunEnd: func(e event.Event) {
			m.Runs.WithLabelValues(e.Workflow, e.Termination).Inc()
			m.RunDuration.WithLabelValues(e.Workflow).Observe(e.Duration.Seconds())
		},
	}
}

// ObserveClient records an LLM client event. Use it as client.Config.OnEvent.
func (m *Metrics) ObserveClient(e client.Event) {
	provider := string(e.Provider)
	switch e.Type {
	case client.EventRequestComplete:
		m.LLMRequests.WithLabelValues(provider, e.Model, "ok").Inc()
		if e.Usage == nil {
			return
		}
		m.LLMTokens.WithLabelValues(provider, e.Model, "input").Add(float64(e.Usage.InputTokens))
		m.LLMTokens.WithLabelValues(provider, e.Model, "output").Add(float64(e.Usage.OutputTokens))
		if cm, err := model.Parse(e.Model); err == nil && !cm.Pricing().IsZero() {
			m.LLMCost.WithLabelValues(provider, e.Model).Add(cm.Cost(*e.Usage))
		}
	case client.EventRequestError:
		m.LLMRequests.WithLabelValues(provider, e.Model, "error").Inc()
	case client.EventRetry:
		if e.Retry != nil && e.Retry.Type == retry.EventRetrying {
			m.LLMRetries.WithLabelValues(provider, e.Model).Inc()
		}
	}
}
