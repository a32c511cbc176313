package convert

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records conversion outcomes. A nil *Metrics records nothing.
type Metrics struct {
	// conversions counts conversions by outcome: ok, syntax, unknown_unit,
	// cyclic_definition, unsupported_composition or error.
	conversions *prometheus.CounterVec

	// duration measures parse + resolve + canonicalize time per code.
	duration prometheus.Histogram
}

// NewMetrics registers the conversion collectors with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucum",
			Name:      "conversions_total",
			Help:      "Total UCUM code conversions by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ucum",
			Name:      "conversion_duration_seconds",
			Help:      "Time to canonicalize one UCUM code",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
	}
}

// Observe records one conversion.
func (m *Metrics) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
