package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the workflow's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	StepDuration      *prometheus.HistogramVec
	StepFailures      *prometheus.CounterVec
	ParseFailures     *prometheus.CounterVec
	ResearchFallbacks *prometheus.CounterVec
	IdeasCreated      prometheus.Counter
	Evaluations       *prometheus.CounterVec
	FinalScores       prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	const ns = "execmind"
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "step_duration_seconds",
				Help:      "Workflow step duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"step"},
		),
		StepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "step_failures_total",
				Help:      "Workflow steps that returned an error",
			},
			[]string{"step"},
		),
		ParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "parse_failures_total",
				Help:      "Model outputs no JSON object could be extracted from",
			},
			[]string{"step"},
		),
		ResearchFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "research_fallbacks_total",
				Help:      "Research sources that degraded to a placeholder",
			},
			[]string{"source"},
		),
		IdeasCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "ideas_created_total",
				Help:      "Structured ideas persisted",
			},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "evaluations_total",
				Help:      "Evaluations persisted, by verdict",
			},
			[]string{"verdict"},
		),
		FinalScores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "final_score",
				Help:      "Distribution of computed final scores",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
		),
	}

	m.registry.MustRegister(
		m.StepDuration,
		m.StepFailures,
		m.ParseFailures,
		m.ResearchFallbacks,
		m.IdeasCreated,
		m.Evaluations,
		m.FinalScores,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeStep(step string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StepFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) parseFailure(step string) {
	if m == nil {
		return
	}
	m.ParseFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) researchFallback(source string) {
	if m == nil {
		return
	}
	m.ResearchFallbacks.WithLabelValues(source).Inc()
}

func (m *Metrics) ideaCreated() {
	if m == nil {
		return
	}
	m.IdeasCreated.Inc()
}

func (m *Metrics) evaluationCreated(verdict string, score float64) {
	if m == nil {
		return
	}
	if verdict == "" {
		verdict = "none"
	}
	m.Evaluations.WithLabelValues(verdict).Inc()
	m.FinalScores.Observe(score)
}
