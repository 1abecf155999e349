package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	evaluationsTotal      *prometheus.CounterVec
	evaluationLatency     prometheus.Histogram
	criterionFailureTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for evaluation observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of answer evaluations performed.",
		}, []string{"needs_review"})

		evaluationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evaluation_latency_seconds",
			Help:    "Latency distribution for answer evaluations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		criterionFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "criterion_failures_total",
			Help: "Total number of criterion-level soft failures.",
		}, []string{"criterion"})

		prometheus.MustRegister(evaluationsTotal, evaluationLatency, criterionFailureTotal)
	})
}

// Evaluations exposes the counter for completed evaluations.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationLatency exposes the latency histogram for evaluations.
func EvaluationLatency() prometheus.Histogram {
	RegisterMetrics()
	return evaluationLatency
}

// CriterionFailures exposes the counter for per-criterion soft failures.
func CriterionFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return criterionFailureTotal
}
