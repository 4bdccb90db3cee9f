package fitment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/WessleyAI/wessley-fitment/pkg/resilience"
)

// Metrics are the engine's Prometheus collectors.
type Metrics struct {
	requests         *prometheus.CounterVec
	results          *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	validationMisses prometheus.Counter
	fallbacks        *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitment",
			Name:      "requests_total",
			Help:      "Fitment resolutions by direction",
		}, []string{"direction"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitment",
			Name:      "results_total",
			Help:      "Candidates returned by direction and source",
		}, []string{"direction", "source"}),
		providerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitment",
			Name:      "provider_errors_total",
			Help:      "Failed calls to embedding, vector, and fallback providers",
		}, []string{"provider"}),
		validationMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fitment",
			Name:      "validation_misses_total",
			Help:      "Semantic hits dropped by lexical validation",
		}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitment",
			Name:      "fallback_total",
			Help:      "Fallback resolver runs by outcome (hit, empty, skipped, error)",
		}, []string{"outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fitment",
			Name:      "request_duration_seconds",
			Help:      "End-to-end resolution latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"direction"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fitment",
			Name:      "breaker_state",
			Help:      "Provider circuit breaker state (0 closed, 1 open, 2 half-open)",
		}, []string{"provider"}),
	}
}

func (m *Metrics) observeBreaker(name string, _, to resilience.State) {
	m.breakerState.WithLabelValues(name).Set(float64(to))
}
