package ctxengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments context governance with prometheus collectors.
// A nil *Metrics is valid everywhere and records nothing.
type Metrics struct {
	compactions  *prometheus.CounterVec
	tokensSaved  prometheus.Counter
	usagePercent prometheus.Gauge
}

// NewMetrics registers the context collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		compactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "context",
			Name:      "compactions_total",
			Help:      "Compaction runs by outcome (generated, fallback, noop).",
		}, []string{"outcome"}),
		tokensSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "context",
			Name:      "tokens_saved_total",
			Help:      "Estimated tokens removed from context by compaction.",
		}),
		usagePercent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nimbus",
			Subsystem: "context",
			Name:      "usage_percent",
			Help:      "Last observed context window usage percentage.",
		}),
	}
}

// ObserveUsage publishes a usage breakdown. Callers (not the tracker)
// decide when a computed breakdown is worth publishing.
func (m *Metrics) ObserveUsage(usage ContextBreakdown) {
	if m == nil {
		return
	}
	m.usagePercent.Set(float64(usage.UsagePercent))
}

// observeCompaction records one compaction run. Saved tokens below zero
// (a summary larger than what it replaced) are not counted.
func (m *Metrics) observeCompaction(outcome string, savedTokens int) {
	if m == nil {
		return
	}
	m.compactions.WithLabelValues(outcome).Inc()
	if savedTokens > 0 {
		m.tokensSaved.Add(float64(savedTokens))
	}
}
