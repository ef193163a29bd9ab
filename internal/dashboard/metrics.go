package dashboard

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"artconnect/internal/scoring"
	"artconnect/internal/storage"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
	Scores    prometheus.Histogram
	HighValue prometheus.Gauge
	registry  *prometheus.Registry
}

// NewMetrics registers the dashboard collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "artconnect_decisions_total",
			Help: "Reviewer decisions logged, by action.",
		}, []string{"action"}),
		Scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "artconnect_opportunity_score",
			Help:    "Opportunity scores of the loaded batch.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		HighValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "artconnect_high_value_interactions",
			Help: "High-value interactions in the loaded batch.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Decisions, m.Scores, m.HighValue)
	for _, a := range storage.Actions {
		m.Decisions.WithLabelValues(string(a))
	}
	return m
}

// ObserveDecision is registered as a review service decision hook.
func (m *Metrics) ObserveDecision(e storage.Entry) {
	if m == nil || m.Decisions == nil {
		return
	}
	m.Decisions.WithLabelValues(string(e.Action)).Inc()
}

// ObserveBatch records the score distribution of a freshly loaded batch.
func (m *Metrics) ObserveBatch(batch []scoring.Scored) {
	if m == nil {
		return
	}
	high := 0
	for _, s := range batch {
		m.Scores.Observe(s.OpportunityScore)
		if s.IsHighValue() {
			high++
		}
	}
	m.HighValue.Set(float64(high))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
